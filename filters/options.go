// Package filters derives filter-bar option sets from already-fetched
// collections and matches individual records against filter criteria. All
// functions are pure: they never touch the network and tolerate dangling
// references by excluding them.
package filters

import (
	"sort"
	"strings"
	"time"

	"github.com/openmechanic/garage-manager/models"
)

// DateLayout is the wire format for date-valued filter options
const DateLayout = "2006-01-02"

// UniqueStrings extracts the distinct non-empty values of key over items,
// sorted lexicographically
func UniqueStrings[T any](items []T, key func(T) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		value := strings.TrimSpace(key(item))
		if value == "" || seen[value] {
			continue
		}
		seen[value] = true
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

// UniqueYears extracts the distinct positive years of key over items, sorted
// numerically descending
func UniqueYears[T any](items []T, key func(T) int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, item := range items {
		year := key(item)
		if year <= 0 || seen[year] {
			continue
		}
		seen[year] = true
		out = append(out, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// UniqueDates extracts the distinct calendar dates of key over items,
// formatted with DateLayout and sorted chronologically descending. Sorting
// happens on the parsed dates, not on the strings.
func UniqueDates[T any](items []T, key func(T) time.Time) []string {
	seen := make(map[string]bool)
	var dates []time.Time
	for _, item := range items {
		value := key(item)
		if value.IsZero() {
			continue
		}
		day := value.Format(DateLayout)
		if seen[day] {
			continue
		}
		seen[day] = true
		dates = append(dates, value.Truncate(24*time.Hour))
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	out := make([]string, 0, len(dates))
	for _, date := range dates {
		out = append(out, date.Format(DateLayout))
	}
	return out
}

// VehicleBrands lists the distinct vehicle brands
func VehicleBrands(vehicles []models.Vehicle) []string {
	return UniqueStrings(vehicles, func(v models.Vehicle) string { return v.Brand })
}

// VehicleYears lists the distinct vehicle years, newest first
func VehicleYears(vehicles []models.Vehicle) []int {
	return UniqueYears(vehicles, func(v models.Vehicle) int { return v.Year })
}

// ReportStatuses lists the distinct statuses present in the reports
func ReportStatuses(reports []models.Report) []string {
	return UniqueStrings(reports, func(r models.Report) string { return string(r.Status) })
}

// ReportDates lists the distinct report creation dates, newest first
func ReportDates(reports []models.Report) []string {
	return UniqueDates(reports, func(r models.Report) time.Time { return r.CreatedAt })
}

// InvoiceDates lists the distinct invoice issue dates, newest first
func InvoiceDates(invoices []models.Invoice) []string {
	return UniqueDates(invoices, func(i models.Invoice) time.Time { return i.IssuedAt })
}

// ReportOwnerNames resolves the owner behind each report through its vehicle
// and lists the distinct owner names. Reports whose vehicle or owner record
// is missing are skipped.
func ReportOwnerNames(reports []models.Report, vehicles []models.Vehicle, owners []models.Owner) []string {
	vehiclesByID := make(map[uint]models.Vehicle, len(vehicles))
	for _, vehicle := range vehicles {
		vehiclesByID[vehicle.ID] = vehicle
	}
	ownersByID := make(map[uint]models.Owner, len(owners))
	for _, owner := range owners {
		ownersByID[owner.ID] = owner
	}

	names := make([]string, 0, len(reports))
	for _, report := range reports {
		vehicle, ok := vehiclesByID[report.VehicleID]
		if !ok {
			continue
		}
		owner, ok := ownersByID[vehicle.OwnerID]
		if !ok {
			continue
		}
		names = append(names, owner.FullName)
	}
	return UniqueStrings(names, func(name string) string { return name })
}
