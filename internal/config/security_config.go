package config

const storeKeyVar = "REGULUS_STORE_KEY"

type SecurityConfig interface {
	// GetStoreKey is the hex encoded 32 byte key sealing the credential file.
	// Empty leaves the file unsealed.
	GetStoreKey() string
}

type Security struct {
	file *File
}

var _ SecurityConfig = Security{}

func (s Security) GetStoreKey() string {
	return GetEnv(storeKeyVar, s.file.StoreKey)
}
