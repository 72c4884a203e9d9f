// Package validation holds the pure form validators used before submitting a
// record. Each validator maps field names to error messages; an empty map
// means the form is valid. Uniqueness checks run case-insensitively against
// the in-memory collection; the backend stays the authority and may still
// reject.
package validation

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/openmechanic/garage-manager/models"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Errors maps a field name to its validation message
type Errors map[string]string

// Valid reports whether no field carries an error
func (e Errors) Valid() bool {
	return len(e) == 0
}

// ValidateOwner checks an owner form. existing is the current owner
// collection, used for the case-insensitive full-name uniqueness check;
// the record being edited (matched by ID) is excluded.
func ValidateOwner(owner models.Owner, existing []models.Owner) Errors {
	errs := Errors{}
	if strings.TrimSpace(owner.FullName) == "" {
		errs["full_name"] = "full name is required"
	}
	if strings.TrimSpace(owner.Email) == "" {
		errs["email"] = "email is required"
	} else if !emailPattern.MatchString(owner.Email) {
		errs["email"] = "email is not valid"
	}

	for _, other := range existing {
		if other.ID != owner.ID && equalFoldTrim(other.FullName, owner.FullName) {
			errs["full_name"] = "an owner with this name already exists"
			break
		}
	}
	return errs
}

// ValidateVehicle checks a vehicle form, including the case-insensitive
// license plate uniqueness check
func ValidateVehicle(vehicle models.Vehicle, existing []models.Vehicle) Errors {
	errs := Errors{}
	if strings.TrimSpace(vehicle.Brand) == "" {
		errs["brand"] = "brand is required"
	}
	if strings.TrimSpace(vehicle.Model) == "" {
		errs["model"] = "model is required"
	}
	if vehicle.Year < 1900 || vehicle.Year > time.Now().Year()+1 {
		errs["year"] = "year is out of range"
	}
	if strings.TrimSpace(vehicle.LicensePlate) == "" {
		errs["license_plate"] = "license plate is required"
	}
	if vehicle.OwnerID == 0 {
		errs["owner_id"] = "owner is required"
	}

	for _, other := range existing {
		if other.ID != vehicle.ID && equalFoldTrim(other.LicensePlate, vehicle.LicensePlate) {
			errs["license_plate"] = "a vehicle with this license plate already exists"
			break
		}
	}
	return errs
}

// ValidatePart checks an inventory part form, including the case-insensitive
// reference code uniqueness check
func ValidatePart(part models.InventoryPart, existing []models.InventoryPart) Errors {
	errs := Errors{}
	if strings.TrimSpace(part.Name) == "" {
		errs["name"] = "name is required"
	}
	if strings.TrimSpace(part.Reference) == "" {
		errs["reference"] = "reference code is required"
	}
	if !part.Category.IsValid() {
		errs["category"] = "category is not valid"
	}
	if part.Quantity < 0 {
		errs["quantity"] = "quantity cannot be negative"
	}
	if part.UnitPrice < 0 {
		errs["unit_price"] = "unit price cannot be negative"
	} else if !hasAtMostTwoDecimals(part.UnitPrice) {
		errs["unit_price"] = "unit price allows at most 2 decimal places"
	}

	for _, other := range existing {
		if other.ID != part.ID && equalFoldTrim(other.Reference, part.Reference) {
			errs["reference"] = "a part with this reference code already exists"
			break
		}
	}
	return errs
}

// ValidateTaskTemplate checks a task template form, including the
// case-insensitive name uniqueness check
func ValidateTaskTemplate(template models.TaskTemplate, existing []models.TaskTemplate) Errors {
	errs := Errors{}
	if strings.TrimSpace(template.Name) == "" {
		errs["name"] = "name is required"
	}
	if template.Price < 0 {
		errs["price"] = "price cannot be negative"
	} else if !hasAtMostTwoDecimals(template.Price) {
		errs["price"] = "price allows at most 2 decimal places"
	}

	for _, other := range existing {
		if other.ID != template.ID && equalFoldTrim(other.Name, template.Name) {
			errs["name"] = "a task template with this name already exists"
			break
		}
	}
	return errs
}

// ValidateReport checks a report form. Status must be a known lifecycle
// state and, when editing, reachable from the current one.
func ValidateReport(report models.Report, current *models.Report) Errors {
	errs := Errors{}
	if report.VehicleID == 0 {
		errs["vehicle_id"] = "vehicle is required"
	}
	if !report.Status.IsValid() {
		errs["status"] = "status is not valid"
	} else if current != nil && !current.Status.CanTransitionTo(report.Status) {
		errs["status"] = "status cannot move backwards"
	}
	return errs
}

// ValidateCredentials checks a login form
func ValidateCredentials(username, password string) Errors {
	errs := Errors{}
	if strings.TrimSpace(username) == "" {
		errs["username"] = "username is required"
	}
	if password == "" {
		errs["password"] = "password is required"
	}
	return errs
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// hasAtMostTwoDecimals reports whether v survives rounding to 2 decimal
// places unchanged, within float tolerance
func hasAtMostTwoDecimals(v float64) bool {
	scaled := v * 100
	return math.Abs(scaled-math.Round(scaled)) < 1e-6
}
