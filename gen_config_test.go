package imagestudio

import "testing"

func TestKind(t *testing.T) {
	tests := []struct {
		kind  Kind
		label string
		slug  string
		base  string
	}{
		{KindTextToImage, "Text→Image", "text_to_image", "generated_image"},
		{KindSimpleEdit, "Simple Edit", "simple_edit", "edited_image"},
		{KindPoseTransfer, "Pose Transfer", "pose_transfer", "pose_transfer"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
			if got := tt.kind.Slug(); got != tt.slug {
				t.Errorf("Slug() = %q, want %q", got, tt.slug)
			}
			if got := tt.kind.OutputBase(); got != tt.base {
				t.Errorf("OutputBase() = %q, want %q", got, tt.base)
			}
		})
	}

	if got := Kind("mystery").OutputBase(); got != "mystery" {
		t.Errorf("unknown kind should fall back to its slug, got %q", got)
	}
}

func TestEstimateItems(t *testing.T) {
	e := NewSimpleTokenEstimator()
	textOnly := EstimateItems(e, []Item{Text("a red bicycle")})
	if textOnly <= 0 {
		t.Fatalf("expected positive estimate, got %d", textOnly)
	}
	withImage := EstimateItems(e, []Item{Text("a red bicycle"), Image(testPNG())})
	if withImage != textOnly+imageTokenCost {
		t.Errorf("image should add %d tokens: %d vs %d", imageTokenCost, withImage, textOnly)
	}
	if EstimateItems(e, nil) != 0 {
		t.Error("expected zero for no items")
	}
}
