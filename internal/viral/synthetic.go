package viral

// Marker phrases that indicate AI-generated narration, avatars, or wholesale
// synthetic footage. Heuristic by design: the filter trades recall for
// precision, so markers are phrases rarely used by human creators about their
// own work.
var syntheticMarkers = []string{
	"ai generated",
	"ai-generated",
	"generated by ai",
	"made with ai",
	"created with ai",
	"ai voice",
	"ai voiceover",
	"ai narration",
	"ai avatar",
	"text to speech",
	"text-to-speech",
	"tts voice",
	"synthesia",
	"heygen",
	"elevenlabs",
	"#aigenerated",
	"#aiart",
	"#aivideo",
	"stable diffusion",
	"midjourney",
	"sora generated",
	"deepfake",
}

// LooksSynthetic reports whether the title/description carry markers of
// AI-generated content. Case-folded substring matching, same as the category
// relevance test.
func LooksSynthetic(title, description string) bool {
	haystack := title + " " + description
	for _, marker := range syntheticMarkers {
		if containsFold(haystack, marker) {
			return true
		}
	}
	return false
}
