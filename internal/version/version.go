// ABOUTME: Version information for sfxkit
// ABOUTME: Product identity reported by the monitor and command line tools
package version

const (
	// Version is the release version
	Version = "0.3.0"

	// Product is the product name
	Product = "sfxkit"

	// Manufacturer identifies the maintainers
	Manufacturer = "sfxkit contributors"
)

// String returns the product and version for banners
func String() string {
	return Product + " " + Version
}
