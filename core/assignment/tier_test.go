package assignment

import "testing"

func TestClassifyTask(t *testing.T) {
	tests := []struct {
		name         string
		def          TaskDef
		wantTier     Tier
		wantFellBack bool
	}{
		{name: "explicit progress", def: TaskDef{Title: "Chapter recap", Category: "progress"}, wantTier: TierProgress},
		{name: "explicit methodology", def: TaskDef{Title: "Drills", Category: "methodology"}, wantTier: TierMethodology},
		{name: "explicit core-method", def: TaskDef{Title: "Drills", Category: "core-method"}, wantTier: TierMethodology},
		{name: "explicit growth", def: TaskDef{Title: "Free play", Category: "growth"}, wantTier: TierGrowth},
		{name: "explicit personalized", def: TaskDef{Title: "Extra help", Category: "personalized"}, wantTier: TierPersonalized},
		{name: "category label is case insensitive", def: TaskDef{Title: "Drills", Category: " Methodology "}, wantTier: TierMethodology},

		// legacy upstream labels
		{name: "legacy basics", def: TaskDef{Title: "x", Category: "basics"}, wantTier: TierProgress},
		{name: "legacy curriculum", def: TaskDef{Title: "x", Category: "curriculum"}, wantTier: TierProgress},
		{name: "legacy core", def: TaskDef{Title: "x", Category: "core"}, wantTier: TierMethodology},
		{name: "legacy extra", def: TaskDef{Title: "x", Category: "extra"}, wantTier: TierPersonalized},
		{name: "legacy custom-meal", def: TaskDef{Title: "x", Category: "custom-meal"}, wantTier: TierPersonalized},

		// fallback keyword rules, in order
		{name: "title correction", def: TaskDef{Title: "Math correction sheet"}, wantTier: TierMethodology, wantFellBack: true},
		{name: "title dictation", def: TaskDef{Title: "French dictation"}, wantTier: TierMethodology, wantFellBack: true},
		{name: "title reading", def: TaskDef{Title: "Silent reading 20min"}, wantTier: TierGrowth, wantFellBack: true},
		{name: "title journal", def: TaskDef{Title: "Evening journal"}, wantTier: TierGrowth, wantFellBack: true},
		{name: "unknown category falls through to title", def: TaskDef{Title: "Recitation practice", Category: "whatever"}, wantTier: TierMethodology, wantFellBack: true},

		// default
		{name: "nothing matches defaults to growth", def: TaskDef{Title: "Mystery task"}, wantTier: TierGrowth, wantFellBack: true},
		{name: "empty definition defaults to growth", def: TaskDef{}, wantTier: TierGrowth, wantFellBack: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, fellBack := ClassifyTask(tt.def)
			if tier != tt.wantTier {
				t.Errorf("ClassifyTask() tier = %v, want %v", tier, tt.wantTier)
			}
			if fellBack != tt.wantFellBack {
				t.Errorf("ClassifyTask() fellBack = %v, want %v", fellBack, tt.wantFellBack)
			}
		})
	}
}
