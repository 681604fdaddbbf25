package credentials

// Keys of the four independently persisted values.
const (
	AccessTokenKey  = "kogase_token"
	RefreshTokenKey = "kogase_refresh_token"
	UserKey         = "kogase_user"
	DeviceIDKey     = "kogase_device_id"
)

// Repo is the persistent key/value storage behind the Store.
type Repo interface {
	// Get returns the value for key and whether it was present
	Get(key string) (string, bool, error)

	// SetMany writes every entry or none of them
	SetMany(values map[string]string) error

	// Delete removes the given keys; missing keys are not an error
	Delete(keys ...string) error
}
