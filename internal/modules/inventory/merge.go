package inventory

// MergeCatalog combines local and Shopify entries into one view.
// Entries are concatenated local-first and never deduplicated across
// sources; a SKU stocked both locally and on Shopify appears twice,
// which is how the console surfaces divergence between the two
// systems. Either slice may be nil.
func MergeCatalog(local, shopify []CatalogEntry) []CatalogEntry {
	merged := make([]CatalogEntry, 0, len(local)+len(shopify))
	merged = append(merged, local...)
	merged = append(merged, shopify...)
	return merged
}
