// Where: internal/meta/meta.go
// What: Toolkit-wide metadata constants.
// Why: Keep identity strings in one place.
package meta

const (
	// Tool Identity
	AppName   = "deploykit"
	Slug      = "deploykit"
	EnvPrefix = "DEPLOYKIT"

	// Directory Layout
	HomeDir           = ".deploykit"
	ProjectConfigFile = "deploykit.yaml"

	// Rotation bucket tagging
	TagPurposeLambdaDeployment = "lambda-deployment"
	TagManagedByRotation       = "bucket-rotation"
)
