package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itmarket <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Assemble an article into a standalone preview page")
	fmt.Fprintln(w, "  pdf        Print articles to PDF in headless Chrome")
	fmt.Fprintln(w, "  png        Capture articles as full-page PNG screenshots")
	fmt.Fprintln(w, "  chart      Draw the labour-market chart as SVG, PNG or PDF")
	fmt.Fprintln(w, "  serve      Serve a live preview and chart explorer")
	fmt.Fprintln(w, "  normalize  Rewrite an article in its canonical form")
	fmt.Fprintln(w, "  patch      Turn a month's figures into a dataset snippet")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  doctor     Check dataset, browser and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'itmarket help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
}

func printDataUsage(w io.Writer) {
	fmt.Fprintln(w, "Dataset:")
	fmt.Fprintln(w, "      --dataset <path>      Monthly dataset file (TOML)")
	fmt.Fprintln(w, "      --patch <path>        Current-month patch merged over the dataset")
	fmt.Fprintln(w)
}

func printArticleUsage(w io.Writer) {
	fmt.Fprintln(w, "Article:")
	fmt.Fprintln(w, "      --base-url <url>      Site root for root-relative URLs (\"\" = keep relative)")
	fmt.Fprintln(w, "      --month <m>           Article month: YYYY-MM, auto or auto:prev")
	fmt.Fprintln(w, "      --normalize           Normalize the body before rendering")
	fmt.Fprintln(w, "      --animation           Start chart embeds animated")
	fmt.Fprintln(w)
}

func printBrowserUsage(w io.Writer) {
	fmt.Fprintln(w, "Browser:")
	fmt.Fprintln(w, "  -t, --timeout <d>         Print timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --viewport <px>       Viewport width in CSS pixels")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel browsers (0 = auto)")
	fmt.Fprintln(w)
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itmarket render <article.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Assemble an article with its charts and tables into one HTML page.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default <article>.html, \"-\" = stdout)")
	fmt.Fprintln(w)
	printDataUsage(w)
	printArticleUsage(w)
	printCommonUsage(w)
}

// printPrintUsage prints usage for the pdf and png commands.
func printPrintUsage(w io.Writer, name string) {
	fmt.Fprintf(w, "Usage: itmarket %s <article.md>... [flags]\n", name)
	fmt.Fprintln(w)
	if name == "png" {
		fmt.Fprintln(w, "Render articles and capture full-page PNG screenshots.")
	} else {
		fmt.Fprintln(w, "Render articles and print them to A4 PDF.")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file for one article, directory for several")
	fmt.Fprintln(w)
	printDataUsage(w)
	printArticleUsage(w)
	printBrowserUsage(w)
	printCommonUsage(w)
}

// printChartUsage prints usage for the chart command.
func printChartUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itmarket chart [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Draw unemployed, job seekers and IT jobs over time.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Chart:")
	fmt.Fprintln(w, "  -f, --format <s>          svg, png, pdf (default svg)")
	fmt.Fprintln(w, "  -m, --mode <s>            all, pair, jobs (default all)")
	fmt.Fprintln(w, "  -r, --range <n>           Last N months, or all")
	fmt.Fprintln(w, "      --from <YYYY-MM>      First month")
	fmt.Fprintln(w, "      --to <YYYY-MM>        Last month")
	fmt.Fprintln(w, "      --agg <series>        Aggregate series (default it_aggregate)")
	fmt.Fprintln(w, "      --jobs <series>       Job series (default it_jobs)")
	fmt.Fprintln(w, "      --width <px>          Width")
	fmt.Fprintln(w, "      --height <px>         Height")
	fmt.Fprintln(w, "      --animation           Animate the interactive SVG")
	fmt.Fprintln(w, "      --static              Draw SVG with the static image renderer")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default stdout)")
	fmt.Fprintln(w)
	printDataUsage(w)
	printCommonUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itmarket serve <article.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve the article preview. Every request rereads the article and dataset.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Routes:")
	fmt.Fprintln(w, "  /              Preview page")
	fmt.Fprintln(w, "  /chart         Chart explorer with mode, range and animation controls")
	fmt.Fprintln(w, "  /chart.svg     Chart image; query: mode, range, from, to, animation")
	fmt.Fprintln(w, "  /preview.pdf   Preview printed to PDF")
	fmt.Fprintln(w, "  /preview.png   Preview as PNG screenshot")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "      --addr <host:port>    Listen address (default 127.0.0.1:8080)")
	fmt.Fprintln(w)
	printDataUsage(w)
	printArticleUsage(w)
	printBrowserUsage(w)
	printCommonUsage(w)
}

// printNormalizeUsage prints usage for the normalize command.
func printNormalizeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itmarket normalize <article.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Clean up a pasted article: table panels become compare tables, headings")
	fmt.Fprintln(w, "are demoted, wrapped lines are joined, chart and table shortcodes are")
	fmt.Fprintln(w, "pinned to the article month and written in canonical form.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Normalize:")
	fmt.Fprintln(w, "      --month <m>           Article month: YYYY-MM, auto or auto:prev (default header date)")
	fmt.Fprintln(w, "      --spacers             Join paragraphs with space shortcodes")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default stdout)")
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printPatchUsage prints usage for the patch command.
func printPatchUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itmarket patch <figures.yaml> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Turn one month's published figures into dataset entries for all seven series.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Patch:")
	fmt.Fprintln(w, "      --month <m>           Report month: YYYY-MM, auto or auto:prev")
	fmt.Fprintln(w, "  -o, --output <path>       Write the snippet to a file (default stdout)")
	fmt.Fprintln(w, "      --apply               Merge the figures into the dataset file")
	fmt.Fprintln(w)
	printDataUsage(w)
	printCommonUsage(w)
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itmarket config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML.")
	fmt.Fprintln(w)
	printDataUsage(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: itmarket doctor [--json] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the dataset, Chrome and the environment.")
	fmt.Fprintln(w)
	printDataUsage(w)
	printCommonUsage(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "pdf", "png":
		printPrintUsage(env.Stdout, args[0])
	case "chart":
		printChartUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "normalize":
		printNormalizeUsage(env.Stdout)
	case "patch":
		printPatchUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: itmarket version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: itmarket help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
