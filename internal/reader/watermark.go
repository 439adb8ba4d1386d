package reader

// DefaultPreviewBanner is the fixed banner prepended to preview content.
const DefaultPreviewBanner = "PREVIEW - A subscription is required to read the full book"

// Watermarker decorates page content with preview framing. It is a pure
// decorator; callers apply it at most once per content unit.
type Watermarker struct {
	banner string
}

func NewWatermarker(banner string) *Watermarker {
	if banner == "" {
		banner = DefaultPreviewBanner
	}
	return &Watermarker{banner: banner}
}

// Apply prepends the banner to the page text and marks the content as a
// preview.
func (w *Watermarker) Apply(content *PageContent) {
	content.Text = w.banner + "\n\n" + content.Text
	content.Watermark = w.banner
	content.IsPreview = true
}
