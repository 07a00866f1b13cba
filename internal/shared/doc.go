// Package shared holds code used across tabclean packages that belongs to no
// single layer. The testutil subpackage provides captured loggers and table
// fixtures for package tests.
package shared
