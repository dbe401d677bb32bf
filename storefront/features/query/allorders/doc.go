// Package allorders implements the admin listing of all orders with the number of orders per status.
package allorders
