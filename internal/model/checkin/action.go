package checkin

// MicroAction is a short coping exercise suggested after a Day check-in.
type MicroAction struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Minutes     int    `json:"minutes"`
}
