package dto

// Response DTOs

type ComplaintResponse struct {
	Code     string `json:"code"`
	Label    string `json:"label"`
	Category string `json:"category"`
	Hint     string `json:"hint,omitempty"`
	Common   bool   `json:"common"`
}

type ComplaintListResponse struct {
	Category   string              `json:"category"`
	Query      string              `json:"query,omitempty"`
	CommonOnly bool                `json:"common_only"`
	Complaints []ComplaintResponse `json:"complaints"`
	Total      int                 `json:"total"`
}

type CategoryListResponse struct {
	Categories []string `json:"categories"`
}
