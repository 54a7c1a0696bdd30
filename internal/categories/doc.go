// Package categories partitions the spot population into mutually exclusive
// revenue categories and proves the partition reconciles to the base
// population to the cent.
//
// Rules form an explicit ordered list. Each rule sees only the spots no
// earlier rule claimed, and the final rule claims everything left, so every
// base spot lands in exactly one category. Rule order is the precedence order
// and is fixed.
package categories
