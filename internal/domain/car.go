package domain

// Car is a vehicle owned by a user. Loan is attached by the car service when
// the vehicle is financed; nil means the car is owned outright.
type Car struct {
	ID     int64       `json:"id"`
	Make   string      `json:"make"`
	Model  string      `json:"model"`
	Year   int         `json:"year"`
	VIN    string      `json:"vin"`
	UserID int64       `json:"user_id"`
	Loan   *LoanRecord `json:"loan,omitempty"`
}
