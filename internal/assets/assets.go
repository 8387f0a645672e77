package assets

// Built-in asset names.
const (
	PreviewStyle      = "preview"
	PreviewTemplate   = "preview"
	ChartPageTemplate = "chart"
)
