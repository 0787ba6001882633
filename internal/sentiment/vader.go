package sentiment

import (
	"bytes"
	"math"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
	"golang.org/x/net/html"
)

var (
	analyzer = govader.NewSentimentIntensityAnalyzer()

	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and keeps only the text of the
// result, so formatting characters do not reach the lexicon while emoticons
// such as "<3" do. Smartypants stays off, otherwise contractions like "don't"
// lose their negation.
func ConvertMarkdownToText(input string) string {
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.HTMLFlagsNone,
	})
	output := blackfriday.Run([]byte(RemoveLinks(input)),
		blackfriday.WithNoExtensions(),
		blackfriday.WithRenderer(renderer))

	return htmlText(output)
}

// htmlText returns the whitespace-normalised text nodes of rendered HTML.
// A "<" that does not open a tag is kept as text by the parser.
func htmlText(rendered []byte) string {
	doc, err := html.Parse(bytes.NewReader(rendered))
	if err != nil {
		return strings.Join(strings.Fields(string(rendered)), " ")
	}

	var sb strings.Builder
	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(doc)

	return strings.Join(strings.Fields(sb.String()), " ")
}

// Score returns the VADER compound polarity of text in [-1, 1]. Blank input
// scores 0.
func Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	plainText := ConvertMarkdownToText(text)
	if plainText == "" {
		return 0
	}

	score := analyzer.PolarityScores(plainText).Compound
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(-1, math.Min(1, score))
}
