package universe

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var codePattern = regexp.MustCompile(`^\d{4}$`)

// parseConstituents extracts TOPIX 100 constituent codes from the JPX listed
// issues page. A constituent row carries a four-digit securities code and a
// size segment of TOPIX Core30 or TOPIX Large70; codes are qualified with
// the .T exchange suffix. Rows with other segments (Mid400, Small and so on)
// are outside the TOPIX 100 and ignored.
func parseConstituents(body io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	seen := make(map[string]struct{})
	var tickers []string

	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		var code, segment string

		row.Find("td").Each(func(j int, cell *goquery.Selection) {
			text := strings.TrimSpace(cell.Text())
			if code == "" && codePattern.MatchString(text) {
				code = text
			}
			if strings.Contains(text, "Core30") || strings.Contains(text, "Large70") {
				segment = text
			}
		})

		if code == "" || segment == "" {
			return
		}

		ticker := code + ".T"
		if _, dup := seen[ticker]; dup {
			return
		}
		seen[ticker] = struct{}{}
		tickers = append(tickers, ticker)
	})

	return tickers, nil
}
