package models

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"        json:"id"`
	Email          string `gorm:"unique;not null"                 json:"email"`
	PasswordHash   string `gorm:"column:password;not null"        json:"-"`
	Name           string `gorm:"not null"                        json:"name"`
	LastName       string `gorm:"column:lastname;not null"        json:"lastname"`
	DocumentType   string `gorm:"not null"                        json:"document_type"`
	DocumentNumber string `gorm:"not null"                        json:"document_number"`
	Phone          string `gorm:"not null"                        json:"phone"`
	Role           Role   `gorm:"not null;default:customer"       json:"role"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

type Product struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"              json:"id"`
	Name        string  `gorm:"not null"                              json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Gender      string  `json:"gender"`
	ColorsJSON  string  `gorm:"column:colors_json"                    json:"colors_json"`
	Sizes       string  `json:"sizes"`
	PriceBase   float64 `gorm:"column:price_base;not null;check:price_base >= 0" json:"price_base"`
	Stock       uint    `json:"stock"`
	SKU         string  `gorm:"column:sku"                            json:"sku"`
	Image       string  `json:"image"`
}

// Fecha is the server-generated ISO-8601 timestamp, never client-supplied.
type Order struct {
	ID     uint        `gorm:"primaryKey;autoIncrement"       json:"id"`
	Fecha  string      `gorm:"not null"                       json:"fecha"`
	UserID uint        `gorm:"column:id_usuario;index;not null" json:"id_usuario"`
	Total  float64     `gorm:"not null"                       json:"total"`
	Lines  []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Order) TableName() string { return "orden_compra" }

type OrderLine struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"                  json:"id"`
	OrderID   uint    `gorm:"column:id_orden;index;not null"            json:"id_orden"`
	ProductID uint    `gorm:"column:id_producto;not null"               json:"id_producto"`
	Quantity  uint    `gorm:"column:cantidad;default:1;check:cantidad > 0" json:"cantidad"`
	UnitPrice float64 `gorm:"column:precio_unitario;not null"           json:"precio_unitario"`
}

func (OrderLine) TableName() string { return "detalle_compra" }

// PurchaseDetail is the denormalized row behind GET /api/detalle_compra.
type PurchaseDetail struct {
	OrderID     uint    `gorm:"column:id_orden"        json:"id_orden"`
	Fecha       string  `gorm:"column:fecha"           json:"fecha"`
	ProductID   uint    `gorm:"column:id_producto"     json:"id_producto"`
	ProductName string  `gorm:"column:nombre_producto" json:"nombre_producto"`
	Gender      string  `gorm:"column:genero"          json:"genero"`
	Sizes       string  `gorm:"column:talla"           json:"talla"`
	Quantity    uint    `gorm:"column:cantidad"        json:"cantidad"`
	UnitPrice   float64 `gorm:"column:precio_unitario" json:"precio_unitario"`
	UserID      uint    `gorm:"column:usuario_id"      json:"usuario_id"`
	Name        string  `gorm:"column:name"            json:"name"`
	LastName    string  `gorm:"column:lastname"        json:"lastname"`
	Email       string  `gorm:"column:email"           json:"email"`
}
