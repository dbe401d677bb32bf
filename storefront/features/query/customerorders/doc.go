// Package customerorders lists the orders of the authenticated customer, newest first.
package customerorders
