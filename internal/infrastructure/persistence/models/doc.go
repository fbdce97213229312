// Package models maps storefront tables to GORM structs.
//
// products is owned by the shop's back office and only read here;
// customer_orders is written once per submission. Domain types never carry
// gorm tags, so each model converts with FromDomain and ToDomain.
package models
