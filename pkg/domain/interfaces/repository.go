package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Link() LinkRepository

	// Close releases backend resources
	Close() error
}
