package filters

import (
	"strings"
	"time"

	"github.com/openmechanic/garage-manager/models"
)

// EntityType tags the collection a criteria record applies to
type EntityType string

const (
	EntityOwner        EntityType = "owner"
	EntityVehicle      EntityType = "vehicle"
	EntityInventory    EntityType = "inventory"
	EntityTaskTemplate EntityType = "task_template"
	EntityReport       EntityType = "report"
	EntityInvoice      EntityType = "invoice"
)

// Criteria is one filter-bar snapshot. Empty or zero fields always match.
// Text is matched by case-insensitive substring; identifiers, enums and
// dates are matched exactly.
type Criteria struct {
	Type      EntityType
	Text      string
	Brand     string
	Status    string
	Category  string
	OwnerName string
	Year      int
	OwnerID   uint
	VehicleID uint
	Date      string // DateLayout
}

// Catalogs carries the auxiliary collections needed for cross-entity joins
// such as report → vehicle → owner
type Catalogs struct {
	Vehicles []models.Vehicle
	Owners   []models.Owner
}

// predicate decides whether one item satisfies the criteria for its entity type
type predicate func(item interface{}, c Criteria, aux Catalogs) bool

// predicates maps every entity tag to its matcher. Lookup keeps the dispatch
// exhaustive over the known tags; an unknown tag matches nothing.
var predicates = map[EntityType]predicate{
	EntityOwner:        func(item interface{}, c Criteria, aux Catalogs) bool { return asOwner(item, c) },
	EntityVehicle:      func(item interface{}, c Criteria, aux Catalogs) bool { return asVehicle(item, c) },
	EntityInventory:    func(item interface{}, c Criteria, aux Catalogs) bool { return asPart(item, c) },
	EntityTaskTemplate: func(item interface{}, c Criteria, aux Catalogs) bool { return asTemplate(item, c) },
	EntityReport:       asReport,
	EntityInvoice:      func(item interface{}, c Criteria, aux Catalogs) bool { return asInvoice(item, c) },
}

// Matches reports whether the item satisfies every populated criterion for
// its entity type
func Matches(item interface{}, c Criteria, aux Catalogs) bool {
	match, ok := predicates[c.Type]
	if !ok {
		return false
	}
	return match(item, c, aux)
}

func asOwner(item interface{}, c Criteria) bool {
	owner, ok := item.(models.Owner)
	if !ok {
		return false
	}
	return matchOwner(owner, c)
}

func asVehicle(item interface{}, c Criteria) bool {
	vehicle, ok := item.(models.Vehicle)
	if !ok {
		return false
	}
	return matchVehicle(vehicle, c)
}

func asPart(item interface{}, c Criteria) bool {
	part, ok := item.(models.InventoryPart)
	if !ok {
		return false
	}
	return matchPart(part, c)
}

func asTemplate(item interface{}, c Criteria) bool {
	template, ok := item.(models.TaskTemplate)
	if !ok {
		return false
	}
	return matchTemplate(template, c)
}

func asReport(item interface{}, c Criteria, aux Catalogs) bool {
	report, ok := item.(models.Report)
	if !ok {
		return false
	}
	return matchReport(report, c, aux)
}

func asInvoice(item interface{}, c Criteria) bool {
	invoice, ok := item.(models.Invoice)
	if !ok {
		return false
	}
	return matchInvoice(invoice, c)
}

func matchOwner(owner models.Owner, c Criteria) bool {
	return containsFold(owner.FullName+" "+owner.Email+" "+owner.Phone, c.Text)
}

func matchVehicle(vehicle models.Vehicle, c Criteria) bool {
	if !containsFold(vehicle.LicensePlate+" "+vehicle.Model, c.Text) {
		return false
	}
	if c.Brand != "" && !strings.EqualFold(vehicle.Brand, c.Brand) {
		return false
	}
	if c.Year > 0 && vehicle.Year != c.Year {
		return false
	}
	if c.OwnerID > 0 && vehicle.OwnerID != c.OwnerID {
		return false
	}
	return true
}

func matchPart(part models.InventoryPart, c Criteria) bool {
	if !containsFold(part.Name+" "+part.Reference, c.Text) {
		return false
	}
	if c.Category != "" && !strings.EqualFold(string(part.Category), c.Category) {
		return false
	}
	return true
}

func matchTemplate(template models.TaskTemplate, c Criteria) bool {
	return containsFold(template.Name+" "+template.Description, c.Text)
}

func matchReport(report models.Report, c Criteria, aux Catalogs) bool {
	if !containsFold(report.Remarks, c.Text) {
		return false
	}
	if c.Status != "" && !strings.EqualFold(string(report.Status), c.Status) {
		return false
	}
	if c.VehicleID > 0 && report.VehicleID != c.VehicleID {
		return false
	}
	if c.Date != "" && !sameDay(report.CreatedAt, c.Date) {
		return false
	}
	if c.OwnerName != "" {
		name, ok := reportOwnerName(report, aux)
		if !ok || !strings.EqualFold(name, c.OwnerName) {
			return false
		}
	}
	return true
}

func matchInvoice(invoice models.Invoice, c Criteria) bool {
	if !containsFold(invoice.Number+" "+invoice.OwnerName+" "+invoice.LicensePlate, c.Text) {
		return false
	}
	if c.OwnerName != "" && !strings.EqualFold(invoice.OwnerName, c.OwnerName) {
		return false
	}
	if c.Date != "" && !sameDay(invoice.IssuedAt, c.Date) {
		return false
	}
	return true
}

// reportOwnerName follows report → vehicle → owner. Missing links yield
// ok=false instead of an error.
func reportOwnerName(report models.Report, aux Catalogs) (string, bool) {
	for _, vehicle := range aux.Vehicles {
		if vehicle.ID != report.VehicleID {
			continue
		}
		for _, owner := range aux.Owners {
			if owner.ID == vehicle.OwnerID {
				return owner.FullName, true
			}
		}
		return "", false
	}
	return "", false
}

// containsFold is a case-insensitive substring check. An empty needle
// always matches.
func containsFold(haystack, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// sameDay reports whether t falls on the given DateLayout date
func sameDay(t time.Time, date string) bool {
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return false
	}
	year, month, day := t.Date()
	py, pm, pd := parsed.Date()
	return year == py && month == pm && day == pd
}
