package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Primary keys are assigned client-side when the caller did not set
// one, so inserts behave the same on postgres and the sqlite test
// databases.

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error        { ensureID(&u.ID); return nil }
func (a *UserAddress) BeforeCreate(*gorm.DB) error { ensureID(&a.ID); return nil }
func (l *UserLocation) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
func (o *OTPCode) BeforeCreate(*gorm.DB) error    { ensureID(&o.ID); return nil }
func (c *Category) BeforeCreate(*gorm.DB) error   { ensureID(&c.ID); return nil }
func (r *Restaurant) BeforeCreate(*gorm.DB) error { ensureID(&r.ID); return nil }
func (p *Product) BeforeCreate(*gorm.DB) error    { ensureID(&p.ID); return nil }
func (c *Cart) BeforeCreate(*gorm.DB) error       { ensureID(&c.ID); return nil }
func (i *CartItem) BeforeCreate(*gorm.DB) error   { ensureID(&i.ID); return nil }
func (o *Order) BeforeCreate(*gorm.DB) error      { ensureID(&o.ID); return nil }
func (i *OrderItem) BeforeCreate(*gorm.DB) error  { ensureID(&i.ID); return nil }
func (p *Payment) BeforeCreate(*gorm.DB) error    { ensureID(&p.ID); return nil }
