package dto

type CreateCompanyRequest struct {
	Nombre       string  `json:"nombre"        validate:"required,min=2"`
	NIT          string  `json:"nit"           validate:"required,min=5"`
	ContactEmail string  `json:"contact_email" validate:"required,email"`
	Telefono     *string `json:"telefono"`
	Direccion    *string `json:"direccion"`
}

type UpdateCompanyRequest struct {
	Nombre       string  `json:"nombre"`
	ContactEmail string  `json:"contact_email" validate:"omitempty,email"`
	Telefono     *string `json:"telefono"`
	Direccion    *string `json:"direccion"`
}

type CompanyResponse struct {
	ID           string  `json:"id"`
	Nombre       string  `json:"nombre"`
	NIT          string  `json:"nit"`
	ContactEmail string  `json:"contact_email"`
	Telefono     *string `json:"telefono"`
	Direccion    *string `json:"direccion"`
	Activo       bool    `json:"activo"`
}
