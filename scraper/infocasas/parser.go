package infocasas

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"inmobiliaria-analyzer/models"
)

var (
	// priceRegexp strips everything but digits from "U$S 145.000" style prices
	priceDigitsRegexp = regexp.MustCompile(`\d+`)
	// areaRegexp captures "72 m²" in the details blurb
	areaRegexp = regexp.MustCompile(`(\d+)\s*m²`)
	// roomsRegexp captures "2 dorm." / "2 dormitorios"
	roomsRegexp = regexp.MustCompile(`(\d+)\s*dorm`)
	// bathsRegexp captures "1 baño" / "2 baños"
	bathsRegexp = regexp.MustCompile(`(\d+)\s*baño`)
)

// Parser extracts property cards from a search-results page. It works on
// captured HTML, so it needs no browser of its own.
type Parser struct {
	knownNeighborhoods []string
}

// NewParser creates a Parser that maps free-text locations onto the given
// canonical neighborhood names.
func NewParser(knownNeighborhoods []string) *Parser {
	return &Parser{knownNeighborhoods: knownNeighborhoods}
}

// ParsePage extracts every property card from the page HTML. Cards missing a
// detail are still returned with that field unset; the cleaner decides what
// to drop.
func (p *Parser) ParsePage(html string, op models.Operation, baseURL string) ([]models.RawProperty, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var props []models.RawProperty

	doc.Find(".property-item").Each(func(_ int, card *goquery.Selection) {
		raw := models.RawProperty{
			Operation: op,
			ScrapedAt: now,
		}

		raw.Price = parsePrice(card.Find(".price").First().Text())

		details := card.Find(".property-details").First().Text()
		raw.AreaM2 = matchFloat(areaRegexp, details)
		raw.Rooms = matchInt(roomsRegexp, details)
		raw.Baths = matchInt(bathsRegexp, details)

		raw.Neighborhood = p.matchNeighborhood(card.Find(".location").First().Text())

		if href, ok := card.Find("a").First().Attr("href"); ok {
			raw.URL = absoluteURL(baseURL, href)
		}

		props = append(props, raw)
	})

	return props, nil
}

// parsePrice strips currency symbols and thousands separators from a price
// like "U$S 145.000" and returns the numeric value, or nil when no digits
// remain.
func parsePrice(text string) *float64 {
	digits := priceDigitsRegexp.FindAllString(text, -1)
	if len(digits) == 0 {
		return nil
	}
	joined := strings.Join(digits, "")
	v, err := strconv.ParseFloat(joined, 64)
	if err != nil {
		return nil
	}
	return &v
}

// matchNeighborhood maps the location blurb onto a canonical neighborhood
// name; unknown locations are kept as trimmed free text.
func (p *Parser) matchNeighborhood(location string) string {
	lower := strings.ToLower(location)
	for _, n := range p.knownNeighborhoods {
		if strings.Contains(lower, strings.ToLower(n)) {
			return n
		}
	}
	return strings.TrimSpace(location)
}

func matchFloat(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

func matchInt(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &v
}

func absoluteURL(base, href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(href, "/")
}
