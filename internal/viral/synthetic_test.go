package viral

import "testing"

func TestLooksSynthetic(t *testing.T) {
	cases := []struct {
		title       string
		description string
		want        bool
	}{
		{"Amazing sunset timelapse", "shot on my phone", false},
		{"Story narrated with AI Voice", "", true},
		{"cool clip", "made with Synthesia avatars", true},
		{"daily vlog #AIGenerated", "", true},
		{"Text-To-Speech fails compilation", "", true},
		{"air fryer recipe", "no artificial narration here", false},
	}
	for _, tc := range cases {
		if got := LooksSynthetic(tc.title, tc.description); got != tc.want {
			t.Fatalf("LooksSynthetic(%q, %q) = %v, want %v", tc.title, tc.description, got, tc.want)
		}
	}
}
