package models

type Vehicle struct {
	ID   uint     `gorm:"column:vehicle_id;primaryKey;autoIncrement" json:"vehicleId"`
	Name string   `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	Type TaxiType `gorm:"column:type;size:16;not null" json:"type"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}

// Driver is bound to at most one vehicle; a vehicle belongs to at most one
// active driver at a time.
type Driver struct {
	ID          uint     `gorm:"column:driver_id;primaryKey;autoIncrement" json:"driverId"`
	Name        string   `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	PhoneNumber string   `gorm:"column:phone_number;size:10;not null;uniqueIndex" json:"phoneNumber"`
	Email       string   `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	VehicleID   *uint    `gorm:"column:vehicle_id;index" json:"vehicleId"`
	Vehicle     *Vehicle `gorm:"foreignKey:VehicleID;references:ID" json:"vehicle,omitempty"`
	AdminID     uint     `gorm:"column:admin_id;not null;index" json:"adminId"`
	IsActive    bool     `gorm:"column:is_active;not null" json:"isActive"`
	Credentials `gorm:"embedded"`
}

func (Driver) TableName() string {
	return "drivers"
}
