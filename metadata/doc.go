// Package metadata describes song identification: the Lookup interface an
// external recognizer implements, the Song it returns and a Tracker that
// exposes the lookup status to a user interface.
//
// No recognizer ships with this module.
package metadata
