package model

import (
	"fmt"
	"strings"
)

const amazonImageURLFormat = "https://images-na.ssl-images-amazon.com/images/P/%s.01._SL250_.jpg"

// DisplayImage resolves the image shown on the item's card. An explicit
// http(s) Image wins; otherwise an Amazon product URL yields the product
// cover. Returns "" when there is nothing to show.
func (i CatalogItem) DisplayImage() string {
	if strings.HasPrefix(i.Image, "http") {
		return i.Image
	}
	if id := AmazonProductID(i.URL); id != "" {
		return fmt.Sprintf(amazonImageURLFormat, id)
	}
	return ""
}

// AmazonProductID extracts the identifier following /dp/ in an Amazon URL,
// up to the next '/' or '?'.
func AmazonProductID(url string) string {
	if !strings.Contains(url, "amazon.") {
		return ""
	}
	_, rest, ok := strings.Cut(url, "/dp/")
	if !ok {
		return ""
	}
	if end := strings.IndexAny(rest, "/?"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
