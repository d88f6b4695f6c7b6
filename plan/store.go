package plan

// Source resolves plans by id. Catalog is the built-in implementation.
type Source interface {
	Get(planID string) (*Plan, bool)
	List() []*Plan
	Trial() *Plan
}
