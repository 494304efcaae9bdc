package classify

import (
	"strings"
	"testing"

	"github.com/nursewire/nursewire/internal/model"
)

// realDesc pads a plausible posting body past the placeholder threshold.
func realDesc(lead string) string {
	return lead + " " + strings.Repeat("Provide direct patient care, administer medications, and document assessments in the EHR. ", 3)
}

func TestClassify_Corpus(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		desc       string
		wantAccept bool
		wantStage  Stage
	}{
		{
			name:       "true positive with credential in title",
			title:      "Registered Nurse - ICU",
			desc:       realDesc("We are seeking an experienced ICU nurse."),
			wantAccept: true,
			wantStage:  StagePositive,
		},
		{
			name:       "true positive with abbreviation only in description",
			title:      "ICU Night Shift Opening",
			desc:       realDesc("Current RN license in good standing required."),
			wantAccept: true,
			wantStage:  StagePositive,
		},
		{
			name:       "dotted abbreviation accepted",
			title:      "R.N. Med-Surg",
			desc:       realDesc("Join our med-surg team."),
			wantAccept: true,
			wantStage:  StagePositive,
		},
		{
			name:       "hyphenated full name accepted",
			title:      "Registered-Nurse, Emergency Department",
			desc:       realDesc("Fast paced emergency department."),
			wantAccept: true,
			wantStage:  StagePositive,
		},
		{
			name:       "title exclusion LPN",
			title:      "LPN - Long Term Care",
			desc:       realDesc("RN supervisor on every shift."),
			wantAccept: false,
			wantStage:  StageTitleExclusion,
		},
		{
			name:       "title exclusion CNA spelled out",
			title:      "Certified Nursing Assistant (Nights)",
			desc:       realDesc("Work alongside our registered nurses."),
			wantAccept: false,
			wantStage:  StageTitleExclusion,
		},
		{
			name:       "title exclusion technician role",
			title:      "Patient Care Technician",
			desc:       realDesc("Supports the RN with daily care tasks."),
			wantAccept: false,
			wantStage:  StageTitleExclusion,
		},
		{
			name:       "title exclusion is case-insensitive",
			title:      "licensed practical nurse",
			desc:       realDesc("Great team environment."),
			wantAccept: false,
			wantStage:  StageTitleExclusion,
		},
		{
			name:       "context exclusion assists the RN",
			title:      "Care Team Member",
			desc:       realDesc("In this role you assist the RN with patient care duties."),
			wantAccept: false,
			wantStage:  StageContextExclusion,
		},
		{
			name:       "context exclusion under supervision",
			title:      "Health Aide Opening",
			desc:       realDesc("Performs tasks under the supervision of a registered nurse."),
			wantAccept: false,
			wantStage:  StageContextExclusion,
		},
		{
			name:       "context mention plus genuine requirement still accepts",
			title:      "Charge Nurse Opening",
			desc:       realDesc("Assists the RN team as needed. Active RN license required for this position."),
			wantAccept: true,
			wantStage:  StagePositive,
		},
		{
			name:       "placeholder too short",
			title:      "RN - Telemetry",
			desc:       "Apply today!",
			wantAccept: false,
			wantStage:  StagePlaceholder,
		},
		{
			name:       "placeholder boilerplate",
			title:      "RN - Oncology",
			desc:       "Job description coming soon. Apply now to learn more about this exciting opportunity at our award-winning facility with great benefits and a supportive culture.",
			wantAccept: false,
			wantStage:  StagePlaceholder,
		},
		{
			name:       "no credential anywhere rejects",
			title:      "Ward Clerk",
			desc:       realDesc("Maintain unit records and greet visitors."),
			wantAccept: false,
			wantStage:  StagePositive,
		},
		{
			name:       "internship mentioning nurses without credential rejects",
			title:      "Summer Clinical Intern",
			desc:       realDesc("Shadow our nursing staff across departments."),
			wantAccept: false,
			wantStage:  StagePositive,
		},
	}

	c := New(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(model.RawJob{Title: tt.title, Description: tt.desc})
			if got.Accept != tt.wantAccept {
				t.Errorf("Classify() accept = %v, want %v (reason: %s)", got.Accept, tt.wantAccept, got.Reason)
			}
			if got.Stage != tt.wantStage {
				t.Errorf("Classify() stage = %s, want %s", got.Stage, tt.wantStage)
			}
		})
	}
}

func TestClassify_IsPure(t *testing.T) {
	job := model.RawJob{
		Title:       "Registered Nurse",
		Description: realDesc("RN license required."),
		Fields:      map[string]string{"location": "Austin, TX"},
	}
	c := New(0)

	first := c.Classify(job)
	second := c.Classify(job)
	if first != second {
		t.Errorf("Classify() not deterministic: %+v vs %+v", first, second)
	}
	if job.Fields["location"] != "Austin, TX" {
		t.Error("Classify() mutated its input")
	}
}

func TestClassify_CustomMinLength(t *testing.T) {
	c := New(10)
	got := c.Classify(model.RawJob{Title: "RN", Description: "RN needed now"})
	if !got.Accept {
		t.Errorf("expected accept with lowered threshold, got stage %s", got.Stage)
	}
}
