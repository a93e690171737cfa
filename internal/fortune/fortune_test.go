package fortune

import (
	"math/rand"
	"testing"
)

func validFortune() *Fortune {
	return &Fortune{
		Level:       "大吉",
		Theme:       "旅行",
		SignNumber:  "七",
		DivineTitle: "晨风",
		Sections: []Section{
			{Name: "运势", Content: "一路顺风。"},
			{Name: "建议", Content: "早些出发。"},
			{Name: "警示", Content: "勿忘行装。"},
			{Name: "寄语", Content: "山川有情。"},
		},
		Maxim: "行到水穷处，坐看云起时。——王维",
		Intro: "「欢迎来到古树根下的祠堂。」",
		End:   "愿旅途平安。",
	}
}

func TestValidateOK(t *testing.T) {
	result := Validate(validFortune())
	if !result.Valid {
		t.Fatalf("valid fortune rejected: %v", result.Problems)
	}
}

func TestValidateUnknownLevel(t *testing.T) {
	f := validFortune()
	f.Level = "超大吉"
	result := Validate(f)
	if result.Valid {
		t.Error("unknown level should fail validation")
	}
}

func TestValidateEmptyTheme(t *testing.T) {
	f := validFortune()
	f.Theme = "  "
	if Validate(f).Valid {
		t.Error("blank theme should fail validation")
	}
}

func TestValidateSectionBounds(t *testing.T) {
	f := validFortune()
	f.Sections = f.Sections[:3]
	if Validate(f).Valid {
		t.Error("3 sections should fail validation")
	}

	f = validFortune()
	for i := 0; i < 5; i++ {
		f.Sections = append(f.Sections, Section{Name: string(rune('a' + i)), Content: "x"})
	}
	if Validate(f).Valid {
		t.Error("9 sections should fail validation")
	}
}

func TestValidateDuplicateSectionNames(t *testing.T) {
	f := validFortune()
	f.Sections[1].Name = f.Sections[0].Name
	if Validate(f).Valid {
		t.Error("duplicate section names should fail validation")
	}
}

func TestIsLevel(t *testing.T) {
	for _, l := range Levels {
		if !IsLevel(l) {
			t.Errorf("IsLevel(%q) = false, want true", l)
		}
	}
	if IsLevel("平") {
		t.Error("IsLevel should reject unknown grades")
	}
}

func TestPickLevelAlwaysKnown(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		if !IsLevel(PickLevel(rng)) {
			t.Fatal("PickLevel returned an unknown grade")
		}
	}
}

func TestPickLevelWeighted(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	counts := make(map[string]int)
	const draws = 20000
	for i := 0; i < draws; i++ {
		counts[PickLevel(rng)]++
	}

	// 吉 has weight 30/92, 大凶 has 2/92; with 20k draws the ordering is
	// stable for any reasonable seed.
	if counts["吉"] <= counts["大凶"] {
		t.Errorf("吉 drawn %d times, 大凶 %d times; expected 吉 to dominate", counts["吉"], counts["大凶"])
	}
	for _, l := range Levels {
		if counts[l] == 0 {
			t.Errorf("level %s never drawn in %d draws", l, draws)
		}
	}
}
