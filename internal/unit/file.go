package unit

import "fmt"

// FileRole says what part a file plays inside a provider tree.
type FileRole string

const (
	RoleUnitSource      FileRole = "unit-source"
	RoleLegacyWhitelist FileRole = "legacy-whitelist"
	RoleScript          FileRole = "script"
	RoleBinary          FileRole = "binary"
	RoleData            FileRole = "data"
	RoleI18N            FileRole = "i18n"
	RoleManage          FileRole = "manage"
	RoleLegal           FileRole = "legal"
	RoleDoc             FileRole = "doc"
	RoleBuild           FileRole = "build"
	RoleVCS             FileRole = "vcs"
	RoleSrc             FileRole = "src"
	RoleUnknown         FileRole = "unknown"
)

var fileRoles = map[FileRole]bool{
	RoleUnitSource:      true,
	RoleLegacyWhitelist: true,
	RoleScript:          true,
	RoleBinary:          true,
	RoleData:            true,
	RoleI18N:            true,
	RoleManage:          true,
	RoleLegal:           true,
	RoleDoc:             true,
	RoleBuild:           true,
	RoleVCS:             true,
	RoleSrc:             true,
	RoleUnknown:         true,
}

func (r FileRole) Valid() bool { return fileRoles[r] }

// File records the existence and role of one file that belongs to a
// provider. File units carry no identifier and are indexed by path.
type File struct {
	base
	role FileRole
}

func NewFile(p Params) (*File, error) {
	f := &File{base: newBase(p)}
	role := FileRole(f.Get(FieldRole))
	if !role.Valid() {
		return nil, &DefinitionError{
			Kind:   KindFile,
			Field:  FieldRole,
			Origin: f.origin,
			Err:    fmt.Errorf("unknown file role %q", string(role)),
		}
	}
	f.role = role
	return f, nil
}

func (f *File) Kind() string { return KindFile }

func (f *File) PartialID() string { return "" }

func (f *File) ID() string { return "" }

func (f *File) Path() string { return f.Get(FieldPath) }

func (f *File) Role() FileRole { return f.role }

// Base is the directory the path was classified relative to.
func (f *File) Base() string { return f.Get(FieldBase) }

func (f *File) Validate(strict bool) error {
	if f.Path() == "" {
		return &ValidationError{Unit: KindFile, Field: FieldPath, Problem: ProblemMissing, Origin: f.origin}
	}
	return nil
}

func (f *File) Check() []Issue { return nil }

func (f *File) String() string { return f.Path() }
