package requests

type LocationRequest struct {
	Name            string `json:"name" binding:"required,max=200"`
	Address         string `json:"address" binding:"max=200"`
	BranchID        uint   `json:"branch_id"`
	ContactPersonID uint   `json:"contact_person_id"`
	ContactNumber   string `json:"contact_number" binding:"max=20"`
	Status          string `json:"status" binding:"omitempty,oneof=active inactive maintenance"`
	Notes           string `json:"notes"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive maintenance"`
}

type SupplierRequest struct {
	Name          string `json:"name" binding:"required,max=200"`
	Address       string `json:"address" binding:"max=200"`
	ContactPerson string `json:"contact_person" binding:"max=200"`
	ContactNumber string `json:"contact_number" binding:"max=20"`
	Email         string `json:"email" binding:"omitempty,email"`
	Status        string `json:"status" binding:"omitempty,oneof=active inactive blacklisted"`
	PaymentTerms  string `json:"payment_terms" binding:"max=100"`
	TaxNumber     string `json:"tax_number" binding:"max=50"`
	Notes         string `json:"notes"`
}
