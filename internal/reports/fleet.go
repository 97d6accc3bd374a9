package reports

import "context"

type VehicleRow struct {
	VehicleID        uint   `db:"vehicle_id" json:"vehicleId"`
	Name             string `db:"name" json:"name"`
	Type             string `db:"type" json:"type"`
	AssignedDriverID *uint  `db:"assigned_driver_id" json:"assignedDriverId"`
}

const vehicleColumns = `
	SELECT v.vehicle_id, v.name, v.type,
		(SELECT MIN(d.driver_id) FROM drivers d WHERE d.vehicle_id = v.vehicle_id) AS assigned_driver_id
	FROM vehicles v`

// Vehicles lists every vehicle with the driver bound to it, active or not.
func (s *Store) Vehicles(ctx context.Context) ([]VehicleRow, error) {
	q := &query{base: vehicleColumns, suffix: "ORDER BY v.vehicle_id"}
	return s.vehicles(ctx, q)
}

// UnassignedVehicles lists vehicles no active driver is bound to.
func (s *Store) UnassignedVehicles(ctx context.Context) ([]VehicleRow, error) {
	q := &query{base: vehicleColumns, suffix: "ORDER BY v.vehicle_id"}
	q.where("NOT EXISTS (SELECT 1 FROM drivers d WHERE d.vehicle_id = v.vehicle_id AND d.is_active = ?)", true)
	return s.vehicles(ctx, q)
}

// VehicleOptionsForDriver lists the vehicles an admin may bind to the driver:
// unassigned ones plus whatever the driver already holds.
func (s *Store) VehicleOptionsForDriver(ctx context.Context, driverID uint) ([]VehicleRow, error) {
	q := &query{base: vehicleColumns, suffix: "ORDER BY v.vehicle_id"}
	q.where(`(NOT EXISTS (SELECT 1 FROM drivers d WHERE d.vehicle_id = v.vehicle_id AND d.is_active = ?)
		OR EXISTS (SELECT 1 FROM drivers d WHERE d.vehicle_id = v.vehicle_id AND d.driver_id = ?))`, true, driverID)
	return s.vehicles(ctx, q)
}

func (s *Store) vehicles(ctx context.Context, q *query) ([]VehicleRow, error) {
	rows := []VehicleRow{}
	if err := s.selectInto(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}
