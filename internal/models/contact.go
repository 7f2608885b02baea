package models

import "time"

// ContactsPerPage is the page size of the contact list
const ContactsPerPage = 10

// Contact represents an address book entry owned by a user
type Contact struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Description string    `json:"description"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	Category    string    `json:"category,omitempty"`
	PictureKey  string    `json:"-"`
	PictureURL  string    `json:"picture_url,omitempty"`
	Show        bool      `json:"show"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FullName joins first and last name
func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// ContactListParams selects a page of contacts
type ContactListParams struct {
	OwnerID int64
	Search  string
	Page    int
}

// Offset returns the row offset of the requested page
func (p ContactListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * ContactsPerPage
}

// ContactPage is one page of the contact list
type ContactPage struct {
	Contacts   []*Contact `json:"contacts"`
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
	Search     string     `json:"search,omitempty"`
}

// NewContactPage fills paging fields from the total row count
func NewContactPage(contacts []*Contact, params ContactListParams, total int) *ContactPage {
	page := params.Page
	if page < 1 {
		page = 1
	}
	totalPages := (total + ContactsPerPage - 1) / ContactsPerPage
	if totalPages == 0 {
		totalPages = 1
	}
	if contacts == nil {
		contacts = []*Contact{}
	}
	return &ContactPage{
		Contacts:   contacts,
		Page:       page,
		PerPage:    ContactsPerPage,
		Total:      total,
		TotalPages: totalPages,
		Search:     params.Search,
	}
}

// DeleteContactRequest is the delete confirmation form
type DeleteContactRequest struct {
	Confirmation string `json:"confirmation" form:"confirmation"`
}

// ContactResponse is returned after a contact is created or updated
type ContactResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Contact *Contact `json:"contact,omitempty"`
}

// DeleteContactResponse is returned after a delete attempt. Without
// confirmation the contact is echoed back and nothing is removed.
type DeleteContactResponse struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message"`
	Confirmation string   `json:"confirmation"`
	Contact      *Contact `json:"contact,omitempty"`
}
