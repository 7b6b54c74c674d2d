package reading

// Page is a 1-based page of paragraphs [From, To).
type Page struct {
	Number int `json:"number"`
	From   int `json:"from"`
	To     int `json:"to"`
}

// PageCount returns how many pages paragraphCount paragraphs fill.
func PageCount(paragraphCount, perPage int) int {
	if paragraphCount <= 0 || perPage <= 0 {
		return 0
	}
	return (paragraphCount + perPage - 1) / perPage
}

// Paginate splits paragraphCount paragraphs into pages of perPage.
func Paginate(paragraphCount, perPage int) []Page {
	n := PageCount(paragraphCount, perPage)
	pages := make([]Page, 0, n)
	for i := 1; i <= n; i++ {
		page, _ := PageAt(paragraphCount, perPage, i)
		pages = append(pages, page)
	}
	return pages
}

// PageAt returns page number, or false when it does not exist.
func PageAt(paragraphCount, perPage, number int) (Page, bool) {
	if number < 1 || number > PageCount(paragraphCount, perPage) {
		return Page{}, false
	}
	from := (number - 1) * perPage
	return Page{Number: number, From: from, To: min(from+perPage, paragraphCount)}, true
}

// PageOf returns the page containing paragraph index.
func PageOf(index, perPage int) int {
	if index < 0 || perPage <= 0 {
		return 1
	}
	return index/perPage + 1
}
