package models

// Rating represents the catalog's review statistics for a product
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product mirrors one entry of the external catalog. It is never persisted;
// every read comes from a live catalog fetch.
type Product struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	RentPrice   float64 `json:"rentprice"`
	Size        string  `json:"size"`
	Image       string  `json:"image"`
	Rating      Rating  `json:"rating"`
}

// ProductRef is the slice of a Product embedded in cart listings.
type ProductRef struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

func (p *Product) Ref() ProductRef {
	return ProductRef{ID: p.ID, Title: p.Title, Price: p.Price, Image: p.Image}
}

// IndexProducts builds the id lookup used to join cart and order lines.
func IndexProducts(products []Product) map[string]*Product {
	index := make(map[string]*Product, len(products))
	for i := range products {
		index[products[i].ID] = &products[i]
	}
	return index
}

// ProductPage is one page of a filtered catalog listing.
type ProductPage struct {
	Products    []Product `json:"products"`
	Total       int       `json:"total"`
	Pages       int       `json:"pages"`
	CurrentPage int       `json:"current_page"`
}
