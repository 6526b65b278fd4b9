// Package dafni declares the records returned by the DAFNI platform API
// (models, datasets and workflows) together with the schemas that read them
// out of decoded API responses.
//
// Simple records derive their schemas from `shape` struct tags. Records
// whose fields need a conversion function, or whose source paths differ
// between endpoints, declare their schemas explicitly.
package dafni

import shape "github.com/SimonDaKappa/go-shape"

// Auth is the permission set the caller holds on an asset.
type Auth struct {
	View    bool   `shape:"path:'view'"`
	Read    bool   `shape:"path:'read'"`
	Update  bool   `shape:"path:'update'"`
	Destroy bool   `shape:"path:'destroy'"`
	Reason  string `shape:"path:'reason' cast:'string'"`
	AssetID string `shape:"path:'asset_id,optional' cast:'string'"`
	RoleID  string `shape:"path:'role_id,optional' cast:'string'"`
	Name    string `shape:"path:'name,optional' cast:'string'"`
}

var AuthSchema = shape.MustSchemaFromTags[Auth]("Auth")

// PermissionString summarises the permissions for listings.
func (a Auth) PermissionString() string {
	switch {
	case a.View && a.Read:
		return "Full access"
	case a.View:
		return "View only"
	default:
		return "Not visible"
	}
}
