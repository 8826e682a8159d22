/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package report

// Result is a report as received by a viewer: exactly one of Patient or
// Clinic is set, matching Mode.
type Result struct {
	Mode    Mode
	Patient *PatientData
	Clinic  *ClinicData
}

// PatientResult wraps patient data.
func PatientResult(d *PatientData) Result {
	return Result{Mode: ModePatient, Patient: d}
}

// ClinicResult wraps clinic data.
func ClinicResult(d *ClinicData) Result {
	return Result{Mode: ModeClinic, Clinic: d}
}

// Valid reports whether the sub-object for the mode is present.
func (r Result) Valid() bool {
	switch r.Mode {
	case ModePatient:
		return r.Patient != nil
	case ModeClinic:
		return r.Clinic != nil
	default:
		return false
	}
}

// ResultFromResponse extracts the sub-object for mode from an upload
// response. ok is false when it is missing.
func ResultFromResponse(resp UploadResponse, mode Mode) (Result, bool) {
	var r Result
	if mode == ModePatient {
		r = PatientResult(resp.PatientData)
	} else {
		r = ClinicResult(resp.ClinicData)
	}

	return r, r.Valid()
}
