// Package itmarket turns a monthly IT labour-market article into a
// standalone HTML preview with live charts and data tables.
//
// # Quick Start
//
// Load the dataset, create an assembler and render an article:
//
//	ds, err := dataset.Load("monthly.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	asm, err := itmarket.NewAssembler(ds,
//	    itmarket.WithBaseURL("https://dietechrecruiter.de"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := asm.Render(ctx, itmarket.Document{Source: article})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("preview.html", []byte(result.HTML), 0644)
//
// # Rendering Pipeline
//
// Render runs the stages in a fixed order:
//
//  1. Optional body normalization for the article month
//  2. Table-panel blocks are swapped for placeholders
//  3. Markdown to HTML via Goldmark (GFM, footnotes, syntax highlighting)
//  4. Placeholders are replaced by the rendered table panels
//  5. Shortcodes expand into spacers, chart embeds and tables
//  6. The body is sanitized with an HTML and SVG allowlist
//  7. Root-relative src and href values become absolute URLs
//  8. The body is wrapped in the preview page template
//
// Shortcodes expand before sanitizing so generated markup passes the same
// allowlist as authored content. Sanitizing before absolutizing keeps
// rewritten URLs out of the sanitizer's reach.
//
// # Degraded Input
//
// Data problems never fail a render. Unknown shortcodes, unknown series and
// malformed months yield visible placeholders, configuration blocks that
// are not table panels stay as text, and missing months count as zero.
// Only asset, template and cancellation errors are returned.
//
// # Custom Assets
//
// The preview template and stylesheet can be overridden from a directory:
//
//	loader, err := assets.NewAssetResolver("/path/to/assets")
//	asm, err := itmarket.NewAssembler(ds, itmarket.WithAssetLoader(loader))
package itmarket
