// Package assets provides the CSS and HTML templates of the preview
// document and the chart page.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in assets)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the assembler and the preview server.
// It tries the custom FilesystemLoader first and falls back to the embedded
// assets when a file is missing, so a site can override the preview
// template and keep the built-in stylesheet.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # e.g. preview.css
//	└── templates/
//	    └── {name}.html          # preview.html, chart.html
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
