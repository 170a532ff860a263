package dto

type DocumentResponse struct {
	ID         string  `json:"id"`
	Filename   string  `json:"filename"`
	URL        string  `json:"url"`
	MimeType   string  `json:"mime_type"`
	Size       int64   `json:"size"`
	Tipo       string  `json:"tipo"`
	Notas      *string `json:"notas"`
	ContractID *string `json:"contract_id"`
	PaymentID  *string `json:"payment_id"`
	RequestID  *string `json:"request_id"`
	CreatedAt  string  `json:"created_at"`
}
