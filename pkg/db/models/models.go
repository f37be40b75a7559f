package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// All lists every persisted model in dependency order, for AutoMigrate in
// sqlite mode and in tests.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&ProductImage{},
		&Banner{},
		&Order{},
		&OrderItem{},
		&Favorite{},
		&OutboxEvent{},
	}
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error         { ensureID(&u.ID); return nil }
func (c *Category) BeforeCreate(*gorm.DB) error     { ensureID(&c.ID); return nil }
func (p *Product) BeforeCreate(*gorm.DB) error      { ensureID(&p.ID); return nil }
func (i *ProductImage) BeforeCreate(*gorm.DB) error { ensureID(&i.ID); return nil }
func (b *Banner) BeforeCreate(*gorm.DB) error       { ensureID(&b.ID); return nil }
func (o *Order) BeforeCreate(*gorm.DB) error        { ensureID(&o.ID); return nil }
func (i *OrderItem) BeforeCreate(*gorm.DB) error    { ensureID(&i.ID); return nil }
func (f *Favorite) BeforeCreate(*gorm.DB) error     { ensureID(&f.ID); return nil }
func (e *OutboxEvent) BeforeCreate(*gorm.DB) error  { ensureID(&e.ID); return nil }
