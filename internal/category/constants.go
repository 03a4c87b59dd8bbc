package category

// DataCategory is the URL-safe key of one of the dashboard data categories.
type DataCategory string

const (
	OperationalReports DataCategory = "operational-reports"
	KtaTta             DataCategory = "kta-tta"
	KpiUtama           DataCategory = "kpi-utama"
	MaintenanceRoutine DataCategory = "maintenance-routine"
	CriticalIssues     DataCategory = "critical-issues"
	SafetyIncidents    DataCategory = "safety-incidents"
	EnergyTargets      DataCategory = "energy-targets"
	EnergyConsumption  DataCategory = "energy-consumption"
)

// Entry pairs a symbolic name with its key.
type Entry struct {
	Name string       `json:"name"`
	Key  DataCategory `json:"key"`
}

var ordered = [...]Entry{
	{Name: "OPERATIONAL_REPORTS", Key: OperationalReports},
	{Name: "KTA_TTA", Key: KtaTta},
	{Name: "KPI_UTAMA", Key: KpiUtama},
	{Name: "MAINTENANCE_ROUTINE", Key: MaintenanceRoutine},
	{Name: "CRITICAL_ISSUES", Key: CriticalIssues},
	{Name: "SAFETY_INCIDENTS", Key: SafetyIncidents},
	{Name: "ENERGY_TARGETS", Key: EnergyTargets},
	{Name: "ENERGY_CONSUMPTION", Key: EnergyConsumption},
}

var byName = func() map[string]DataCategory {
	m := make(map[string]DataCategory, len(ordered))
	for _, e := range ordered {
		m[e.Name] = e.Key
	}
	return m
}()

var byKey = func() map[DataCategory]string {
	m := make(map[DataCategory]string, len(ordered))
	for _, e := range ordered {
		m[e.Key] = e.Name
	}
	return m
}()

// Lookup returns the key for a symbolic name such as "KPI_UTAMA".
func Lookup(name string) (DataCategory, bool) {
	k, ok := byName[name]
	return k, ok
}

// DataCategories returns a fresh map from each symbolic name to its key.
func DataCategories() map[string]DataCategory {
	out := make(map[string]DataCategory, len(byName))
	for name, k := range byName {
		out[name] = k
	}
	return out
}

// All returns the categories in declaration order.
func All() []Entry {
	out := make([]Entry, len(ordered))
	copy(out, ordered[:])
	return out
}

func Keys() []DataCategory {
	out := make([]DataCategory, len(ordered))
	for i, e := range ordered {
		out[i] = e.Key
	}
	return out
}

// Parse maps a key from a URL or request body back to a DataCategory.
func Parse(key string) (DataCategory, bool) {
	k := DataCategory(key)
	return k, k.Valid()
}

func (c DataCategory) Valid() bool {
	_, ok := byKey[c]
	return ok
}

// Name returns the symbolic name, or "" for unknown keys.
func (c DataCategory) Name() string {
	return byKey[c]
}

func (c DataCategory) String() string {
	return string(c)
}
