package models

// Category groups products in the shop catalog.
type Category struct {
	ID     int64  `json:"id_categoria"`
	Nombre string `json:"nombre"`
}
