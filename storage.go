package lifedb

// Storage is the durable side of a Store: a flat key-value collection holding
// the encoded records of a single entity kind.
type Storage interface {
	// Insert stores data under key, overwriting any previous value.
	Insert(key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// QueryAll returns every stored record. Order is backend-specific.
	QueryAll() ([]RawRecord, error)

	// QueryByKey returns the data stored under key, if any.
	QueryByKey(key string) ([]byte, bool, error)

	// Close releases the underlying resources. Closing twice is a no-op.
	Close() error
}

// RawRecord is an encoded record as held by a Storage.
type RawRecord struct {
	Key  string
	Data []byte
}
