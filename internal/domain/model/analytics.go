package model

// GiftSlice is one wedge of the gift-distribution breakdown: the gift's
// display name and how many claims carried it within the queried range.
type GiftSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// AnalyticsReport is the day-bucketed view of successful redemptions.
// Slices are index-aligned and sorted by day ascending.
type AnalyticsReport struct {
	Dates              []string    `json:"dates"`
	CodesCount         []int       `json:"codesCount"`
	CodesWithGiftCount []int       `json:"codesWithGiftCount"`
	GiftDistribution   []GiftSlice `json:"pieData"`
}
