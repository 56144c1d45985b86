package entity

// Product representa un producto del catálogo. Es dato de referencia mantenido externamente.
type Product struct {
	ID          int64
	Description string
}
