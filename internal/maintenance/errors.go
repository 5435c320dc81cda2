package maintenance

import "github.com/ukydev/fleet-maintenance/internal/apperr"

// Odometer errors.
var (
	ErrInvalidMileage          = apperr.Validation("INVALID_MILEAGE", "mileage must be a number")
	ErrVehicleNotFound         = apperr.NotFound("VEHICLE_NOT_FOUND", "Vehicle VIN does not exist.")
	ErrMileageRegression       = apperr.Conflict("MILEAGE_REGRESSION", "Mileage must be greater than the last recorded value.")
	ErrFutureDateConflict      = apperr.Conflict("FUTURE_DATE_CONFLICT", "Request can't be processed right now.")
	ErrOpenUnpaidServiceExists = apperr.Conflict("OPEN_UNPAID_SERVICE", "Existing unpaid service present; cannot add odometer reading until service is paid or completed")
	ErrServiceTypeRequired     = apperr.Validation("SERVICE_TYPE_REQUIRED", "serviceType is required")
	ErrReadingNotDue           = apperr.Validation("READING_NOT_DUE", "Mileage is less than nextServiceMileage; reading not added until due")
)

// Scheduling errors.
var (
	ErrVehicleRequired     = apperr.Validation("VEHICLE_REQUIRED", "vehicleVIN or vehicleId is required")
	ErrNoUnassignedService = apperr.NotFound("NO_UNASSIGNED_SERVICE", "No unassigned service exists for this vehicle")
	ErrInvalidDueDate      = apperr.Validation("INVALID_DUE_DATE", "Due service date must be in the future")
	ErrTechnicianNotFound  = apperr.NotFound("TECHNICIAN_NOT_FOUND", "Technician not found")
	ErrSkillMismatch       = apperr.Conflict("SKILL_MISMATCH", "Technician does not have the required skill")
	ErrNotAvailableToday   = apperr.Conflict("NOT_AVAILABLE_TODAY", "Technician is not available today")
	ErrTechnicianBusy      = apperr.Conflict("TECHNICIAN_BUSY", "Technician already has an active assignment")
	ErrAdminOnly           = apperr.Authorization("ADMIN_ONLY", "Access denied. Admins only.")
)

// Assignment errors.
var (
	ErrServiceIDRequired       = apperr.Validation("SERVICE_ID_REQUIRED", "Service ID is required.")
	ErrServiceNotFound         = apperr.NotFound("SERVICE_NOT_FOUND", "Service not found")
	ErrAlreadyAssigned         = apperr.Conflict("ALREADY_ASSIGNED", "Service has already been assigned")
	ErrNoTechnicianOnService   = apperr.Validation("NO_TECHNICIAN_ON_SERVICE", "No technician specified on this service. Provide technicianId when scheduling.")
	ErrStatusRequired          = apperr.Validation("STATUS_REQUIRED", "status is required")
	ErrInvalidStatus           = apperr.Validation("INVALID_STATUS", "Status must be one of: Assigned, Work In Progress, Completed")
	ErrNotYourAssignment       = apperr.Authorization("NOT_YOUR_ASSIGNMENT", "You are not assigned to this service")
	ErrServiceAlreadyCompleted = apperr.Conflict("SERVICE_ALREADY_COMPLETED", "Service is already completed")
	ErrNoAssignmentsFound      = apperr.NotFound("NO_ASSIGNMENTS_FOUND", "No assignments found for this technician")
	ErrNoUnassignedServices    = apperr.NotFound("NO_UNASSIGNED_SERVICES", "No Unassigned Services")
	ErrUnauthorizedRole        = apperr.Authorization("UNAUTHORIZED_ROLE", "Unauthorized role")
)

// Payment errors.
var (
	ErrMissingFields        = apperr.Validation("MISSING_FIELDS", "serviceId and paymentStatus are required")
	ErrInvalidPaymentStatus = apperr.Validation("INVALID_PAYMENT_STATUS", "paymentStatus must be Paid or Unpaid")
)

// Registry errors.
var (
	ErrUnsupportedBrand       = apperr.Validation("UNSUPPORTED_BRAND", "Service not available for this brand")
	ErrVehicleTypeRequired    = apperr.Validation("VEHICLE_TYPE_REQUIRED", "Vehicle type is required")
	ErrUnsupportedVehicleType = apperr.Validation("UNSUPPORTED_VEHICLE_TYPE", "Service not available for this vehicle type")
	ErrInvalidLastServiceDate = apperr.Validation("INVALID_LAST_SERVICE_DATE", "Invalid or future last service date")
	ErrVINRequired            = apperr.Validation("VIN_REQUIRED", "VIN is required")
	ErrVehicleExists          = apperr.Conflict("VEHICLE_EXISTS", "Vehicle with this VIN already exists")
	ErrEmailExists            = apperr.Conflict("EMAIL_EXISTS", "User with this email already exists.")
)
