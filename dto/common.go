package dto

// PageQuery is the page/limit pair accepted by list endpoints; page is zero-based.
type PageQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}
