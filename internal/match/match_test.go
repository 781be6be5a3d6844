package match

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestTokenize(t *testing.T) {
	cases := map[string][]string{
		"":                        nil,
		"   \t\n ":                nil,
		"Hello, World!":           {"hello", "world"},
		"Just got my car fixed.":  {"just", "got", "my", "car", "fixed"},
		"über-cool straße 42":     {"über", "cool", "straße", "42"},
		"a--b  c!!d":              {"a", "b", "c", "d"},
		"MIXED case AND Numbers9": {"mixed", "case", "and", "numbers9"},
	}
	for in, want := range cases {
		got := Tokenize(in)
		if len(got) == 0 && len(want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Tokenize(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestScoreKeywords_ExactBeatsPartial(t *testing.T) {
	tokens := Tokenize("my car broke down near the carpark")

	// "car" hits exactly (+2) even though it is also a substring of "carpark".
	score, excluded := ScoreKeywords([]string{"car"}, tokens)
	if excluded || score != ExactScore {
		t.Fatalf("exact: score=%d excluded=%v; want %d,false", score, excluded, ExactScore)
	}

	// "carp" only matches partially inside "carpark" (+1).
	score, excluded = ScoreKeywords([]string{"carp"}, tokens)
	if excluded || score != PartialScore {
		t.Fatalf("partial: score=%d excluded=%v; want %d,false", score, excluded, PartialScore)
	}
}

func TestScoreKeywords_PartialLengthFloor(t *testing.T) {
	tokens := Tokenize("abcdef")

	// Two-rune positive term: no exact token "ab", and partial is blocked
	// by the length floor.
	if score, _ := ScoreKeywords([]string{"ab"}, tokens); score != 0 {
		t.Fatalf("short positive matched partially: score=%d", score)
	}
	// Three runes clears the floor.
	if score, _ := ScoreKeywords([]string{"abc"}, tokens); score != PartialScore {
		t.Fatalf("three-rune partial: score=%d; want %d", score, PartialScore)
	}
	// Short negative terms only exclude on exact membership.
	if _, excluded := ScoreKeywords([]string{"-ab"}, tokens); excluded {
		t.Fatalf("short negative excluded via substring")
	}
	if _, excluded := ScoreKeywords([]string{"-ab"}, Tokenize("ab cd")); !excluded {
		t.Fatalf("short negative should exclude on exact token hit")
	}
}

func TestScoreKeywords_ExclusionDominatesInclusion(t *testing.T) {
	tokens := Tokenize("great deal, definitely not a scam")

	// Positive matches before and after the negative keyword do not save
	// the template.
	kws := []string{"deal", "-scam", "great"}
	score, excluded := ScoreKeywords(kws, tokens)
	if !excluded {
		t.Fatalf("negative hit did not exclude (score=%d)", score)
	}

	// Same keywords, post without the banned token.
	score, excluded = ScoreKeywords(kws, Tokenize("great deal on wheels"))
	if excluded || score != 2*ExactScore {
		t.Fatalf("clean post: score=%d excluded=%v; want %d,false", score, excluded, 2*ExactScore)
	}
}

func TestScoreKeywords_BlankAndBareMarkerSkipped(t *testing.T) {
	tokens := Tokenize("anything at all")
	score, excluded := ScoreKeywords([]string{"", "   ", "-", "- "}, tokens)
	if excluded || score != 0 {
		t.Fatalf("blank keywords contributed: score=%d excluded=%v", score, excluded)
	}
}

func TestScoreKeywords_SpecExample(t *testing.T) {
	tokens := Tokenize("Just got my car fixed, auto shop was great")
	score, excluded := ScoreKeywords([]string{"car", "auto"}, tokens)
	if excluded || score != 4 {
		t.Fatalf("score=%d excluded=%v; want 4,false", score, excluded)
	}
}

func TestCollect_CategoryBonusRules(t *testing.T) {
	tokens := Tokenize("car trouble again")
	tpls := []Template{
		{ID: "a", Bodies: []string{"a"}, Keywords: []string{"car"}, Category: "auto"},
		{ID: "b", Bodies: []string{"b"}, Keywords: []string{"car"}, Category: "food"},
		// No keyword hit: the bonus must not be a path to inclusion.
		{ID: "c", Bodies: []string{"c"}, Keywords: []string{"pizza"}, Category: "auto"},
	}

	cands := Collect(tpls, tokens, "auto")
	if len(cands) != 2 {
		t.Fatalf("got %d candidates; want 2", len(cands))
	}
	byID := map[string]int{}
	for _, c := range cands {
		byID[c.Template.ID] = c.Score
	}
	if byID["a"] != ExactScore+CategoryBonus {
		t.Errorf("boosted score = %d; want %d", byID["a"], ExactScore+CategoryBonus)
	}
	if byID["b"] != ExactScore {
		t.Errorf("unboosted score = %d; want %d", byID["b"], ExactScore)
	}
	if _, ok := byID["c"]; ok {
		t.Errorf("zero-score template included via category bonus")
	}
}

func TestCollect_EmitsOneCandidatePerVariant(t *testing.T) {
	tokens := Tokenize("car")
	tpls := []Template{
		{ID: "a", Bodies: []string{"base", "alt one", "alt two"}, Keywords: []string{"car"}},
	}
	cands := Collect(tpls, tokens, "")
	if len(cands) != 3 {
		t.Fatalf("got %d candidates; want 3", len(cands))
	}
	for i, c := range cands {
		if c.VariantIndex != i {
			t.Errorf("candidate %d has variant index %d", i, c.VariantIndex)
		}
		if c.Score != ExactScore {
			t.Errorf("variant %d score = %d; want shared %d", i, c.Score, ExactScore)
		}
	}
}

func TestRank_FreshAlwaysBeforeStale(t *testing.T) {
	now := time.Now().UTC()
	cands := []*Candidate{
		{Template: Template{ID: "hi"}, Score: 9},
		{Template: Template{ID: "lo"}, Score: 1},
	}
	// The high scorer was used two hours ago; the low scorer is untouched.
	MarkUsage(cands, []Usage{{TemplateID: "hi", At: now.Add(-2 * time.Hour)}}, 24*time.Hour, now)

	ranked := Rank(cands, 3)
	if len(ranked) != 2 {
		t.Fatalf("got %d ranked; want 2", len(ranked))
	}
	if ranked[0].Template.ID != "lo" || ranked[1].Template.ID != "hi" {
		t.Fatalf("order = [%s %s]; want fresh before stale", ranked[0].Template.ID, ranked[1].Template.ID)
	}
}

func TestRank_StaleRotatesOldestFirst(t *testing.T) {
	now := time.Now().UTC()
	cands := []*Candidate{
		{Template: Template{ID: "a"}, Score: 5},
		{Template: Template{ID: "b"}, Score: 5},
		{Template: Template{ID: "c"}, Score: 5},
	}
	MarkUsage(cands, []Usage{
		{TemplateID: "a", At: now.Add(-1 * time.Hour)},
		{TemplateID: "b", At: now.Add(-5 * time.Hour)},
		{TemplateID: "c", At: now.Add(-3 * time.Hour)},
	}, 24*time.Hour, now)

	ranked := Rank(cands, 3)
	got := []string{ranked[0].Template.ID, ranked[1].Template.ID, ranked[2].Template.ID}
	want := []string{"b", "c", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("stale order = %v; want %v", got, want)
	}
}

func TestRank_DeterministicTieBreak(t *testing.T) {
	cands := []*Candidate{
		{Template: Template{ID: "zz"}, Score: 4},
		{Template: Template{ID: "aa"}, VariantIndex: 1, Score: 4},
		{Template: Template{ID: "aa"}, VariantIndex: 0, Score: 4},
	}
	ranked := Rank(cands, 3)
	if ranked[0].Template.ID != "aa" || ranked[0].VariantIndex != 0 {
		t.Fatalf("first = %s/%d; want aa/0", ranked[0].Template.ID, ranked[0].VariantIndex)
	}
	if ranked[1].Template.ID != "aa" || ranked[1].VariantIndex != 1 {
		t.Fatalf("second = %s/%d; want aa/1", ranked[1].Template.ID, ranked[1].VariantIndex)
	}
	if ranked[2].Template.ID != "zz" {
		t.Fatalf("third = %s; want zz", ranked[2].Template.ID)
	}
}

func TestRank_Truncates(t *testing.T) {
	cands := []*Candidate{
		{Template: Template{ID: "a"}, Score: 4},
		{Template: Template{ID: "b"}, Score: 3},
		{Template: Template{ID: "c"}, Score: 2},
		{Template: Template{ID: "d"}, Score: 1},
	}
	ranked := Rank(cands, 3)
	if len(ranked) != 3 {
		t.Fatalf("got %d; want 3", len(ranked))
	}
	if ranked[0].Template.ID != "a" || ranked[2].Template.ID != "c" {
		t.Fatalf("unexpected truncation order")
	}
}

func TestMarkUsage_IgnoresRecordsOutsideWindow(t *testing.T) {
	now := time.Now().UTC()
	cands := []*Candidate{{Template: Template{ID: "a"}, Score: 2}}
	MarkUsage(cands, []Usage{{TemplateID: "a", At: now.Add(-25 * time.Hour)}}, 24*time.Hour, now)
	if cands[0].RecentlyUsed {
		t.Fatalf("record outside window flagged as recent")
	}
}

func TestRender(t *testing.T) {
	cases := []struct {
		text, url, want string
	}{
		{"Need auto repair? {url}", "http://x.test", "Need auto repair? http://x.test"},
		{"Visit {url} or {url}", "http://x.test", "Visit http://x.test or http://x.test"},
		{"Come see %site% today", "http://x.test", "Come see http://x.test today"},
		{"Come see %site% today", "", "Come see our website today"},
		{"Plain text", "http://x.test", "Plain text http://x.test"},
		{"Plain text", "", "Plain text"},
		{"Already ends http://x.test", "http://x.test", "Already ends http://x.test"},
		{"Token, no url: {url}", "", "Token, no url: {url}"},
	}
	for _, tc := range cases {
		if got := Render(tc.text, tc.url); got != tc.want {
			t.Errorf("Render(%q, %q) = %q; want %q", tc.text, tc.url, got, tc.want)
		}
	}
}

func TestRender_Idempotent(t *testing.T) {
	once := Render("Need auto repair? {url}", "http://x.test")
	twice := Render(once, "http://x.test")
	if once != twice {
		t.Fatalf("second render changed text: %q -> %q", once, twice)
	}
}

func TestFallbacks(t *testing.T) {
	// One suggestion per matched hint, URL appended.
	got := Fallbacks("my car needs a workout plan", "http://x.test")
	if len(got) != 2 {
		t.Fatalf("got %d fallbacks; want 2", len(got))
	}
	for _, s := range got {
		if !s.IsFallback {
			t.Errorf("fallback not flagged: %+v", s)
		}
		if !strings.HasSuffix(s.Text, "http://x.test") {
			t.Errorf("url not appended: %q", s.Text)
		}
	}

	// No hint: exactly one generic suggestion. Never zero.
	got = Fallbacks("completely unrelated musings", "")
	if len(got) != 1 || !got[0].IsFallback {
		t.Fatalf("generic fallback = %+v; want exactly one", got)
	}
}

func TestEngine_Suggest_EndToEnd(t *testing.T) {
	now := time.Now().UTC()
	e := New()

	tpls := []Template{
		{ID: "t1", Label: "Repair", Bodies: []string{"Need auto repair? {url}"}, Keywords: []string{"car", "auto"}, URL: "http://x.test"},
		{ID: "t2", Label: "Sell", Bodies: []string{"Selling your ride? %site% can help"}, Keywords: []string{"car"}},
		{ID: "t3", Label: "Scrub", Bodies: []string{"never shown"}, Keywords: []string{"car", "-fixed"}},
	}

	got := e.Suggest(Request{
		PostText:   "Just got my car fixed, auto shop was great",
		Templates:  tpls,
		DefaultURL: "http://default.test",
		Now:        now,
	})

	// t3 is vetoed by "-fixed"; t1 scores 4, t2 scores 2.
	if len(got) != 2 {
		t.Fatalf("got %d suggestions; want 2", len(got))
	}
	if got[0].TemplateID != "t1" || got[0].Text != "Need auto repair? http://x.test" {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].TemplateID != "t2" || got[1].Text != "Selling your ride? http://default.test can help" {
		t.Fatalf("second = %+v", got[1])
	}

	// Re-run in the same group after t1 was accepted: t1 drops behind t2.
	got = e.Suggest(Request{
		PostText:  "Just got my car fixed, auto shop was great",
		Templates: tpls,
		Usage:     []Usage{{TemplateID: "t1", At: now.Add(-2 * time.Hour)}},
		Now:       now,
	})
	if got[0].TemplateID != "t2" || got[1].TemplateID != "t1" {
		t.Fatalf("usage-aware order = [%s %s]; want [t2 t1]", got[0].TemplateID, got[1].TemplateID)
	}
}

func TestEngine_Suggest_EmptyPostFallsBack(t *testing.T) {
	e := New(WithResultLimit(5))
	got := e.Suggest(Request{
		PostText:  "",
		Templates: []Template{{ID: "a", Bodies: []string{"x"}, Keywords: []string{"car"}}},
	})
	if len(got) == 0 {
		t.Fatalf("empty post produced zero suggestions")
	}
	if !got[0].IsFallback {
		t.Fatalf("empty post should fall back, got %+v", got[0])
	}
}

func TestNew_OptionValidation(t *testing.T) {
	e := New(WithResultLimit(0), WithLookback(-time.Hour))
	if e.ResultLimit() != 3 {
		t.Errorf("bad limit accepted: %d", e.ResultLimit())
	}
	if e.Lookback() != 24*time.Hour {
		t.Errorf("bad lookback accepted: %v", e.Lookback())
	}
}
