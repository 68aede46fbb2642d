package unit

// Category names a group that jobs can place themselves in through
// their category_id field.
type Category struct {
	base
}

func NewCategory(p Params) (*Category, error) {
	return &Category{base: newBase(p)}, nil
}

func (c *Category) Kind() string { return KindCategory }

func (c *Category) Name() string { return c.Get(FieldName) }

func (c *Category) Validate(strict bool) error {
	if c.PartialID() == "" {
		return &ValidationError{Unit: KindCategory, Field: FieldID, Problem: ProblemMissing, Origin: c.origin}
	}
	if c.Name() == "" {
		return &ValidationError{Unit: KindCategory, Field: FieldName, Problem: ProblemMissing, Origin: c.origin}
	}
	return nil
}

func (c *Category) Check() []Issue { return nil }

func (c *Category) String() string {
	if id := c.ID(); id != "" {
		return id
	}
	return c.Name()
}
