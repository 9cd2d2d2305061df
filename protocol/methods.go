package protocol

// Method names for every Cortex v2 JSON-RPC call in the parity matrix
// (spec.md §6). The typed client surface covers every one of these;
// callers may still send arbitrary method names through the raw
// transport if the server adds new ones.
const (
	// Authentication
	MethodGetCortexInfo      = "getCortexInfo"
	MethodGetUserLogin       = "getUserLogin"
	MethodRequestAccess      = "requestAccess"
	MethodHasAccessRight     = "hasAccessRight"
	MethodAuthorize          = "authorize"
	MethodGenerateNewToken   = "generateNewToken"
	MethodGetUserInformation = "getUserInformation"
	MethodGetLicenseInfo     = "getLicenseInfo"

	// Headsets
	MethodControlDevice            = "controlDevice"
	MethodQueryHeadsets            = "queryHeadsets"
	MethodUpdateHeadset            = "updateHeadset"
	MethodUpdateHeadsetCustomInfo  = "updateHeadsetCustomInfo"
	MethodSyncWithHeadsetClock     = "syncWithHeadsetClock"
	MethodConfigMapping            = "configMapping"

	// Sessions
	MethodCreateSession = "createSession"
	MethodUpdateSession = "updateSession"
	MethodQuerySessions = "querySessions"

	// Streams
	MethodSubscribe   = "subscribe"
	MethodUnsubscribe = "unsubscribe"

	// Records/markers
	MethodCreateRecord               = "createRecord"
	MethodStopRecord                 = "stopRecord"
	MethodUpdateRecord               = "updateRecord"
	MethodDeleteRecord               = "deleteRecord"
	MethodExportRecord               = "exportRecord"
	MethodQueryRecords               = "queryRecords"
	MethodGetRecordInfos             = "getRecordInfos"
	MethodConfigOptOut               = "configOptOut"
	MethodRequestToDownloadRecordData = "requestToDownloadRecordData"
	MethodInjectMarker               = "injectMarker"
	MethodUpdateMarker               = "updateMarker"

	// Subjects
	MethodCreateSubject           = "createSubject"
	MethodUpdateSubject           = "updateSubject"
	MethodDeleteSubjects          = "deleteSubjects"
	MethodQuerySubjects           = "querySubjects"
	MethodGetDemographicAttributes = "getDemographicAttributes"

	// Profiles
	MethodQueryProfile     = "queryProfile"
	MethodGetCurrentProfile = "getCurrentProfile"
	MethodSetupProfile     = "setupProfile"
	MethodLoadGuestProfile = "loadGuestProfile"

	// BCI
	MethodTraining                         = "training"
	MethodGetDetectionInfo                 = "getDetectionInfo"
	MethodGetTrainedSignatureActions       = "getTrainedSignatureActions"
	MethodGetTrainingTime                  = "getTrainingTime"
	MethodFacialExpressionSignatureType    = "facialExpressionSignatureType"
	MethodFacialExpressionThreshold        = "facialExpressionThreshold"
	MethodMentalCommandActiveAction        = "mentalCommandActiveAction"
	MethodMentalCommandBrainMap            = "mentalCommandBrainMap"
	MethodMentalCommandTrainingThreshold   = "mentalCommandTrainingThreshold"
	MethodMentalCommandActionSensitivity   = "mentalCommandActionSensitivity"
)

// StreamKind identifies one of the nine canonical Cortex data streams.
type StreamKind string

const (
	StreamEEG               StreamKind = "eeg"
	StreamMotion            StreamKind = "mot"
	StreamBandPower         StreamKind = "pow"
	StreamMetrics           StreamKind = "met"
	StreamMentalCommand     StreamKind = "com"
	StreamFacialExpression  StreamKind = "fac"
	StreamDeviceQuality     StreamKind = "dev"
	StreamEEGQuality        StreamKind = "eq"
	StreamSystem            StreamKind = "sys"
)

// AllStreamKinds lists every canonical stream kind, in the order spec.md §6
// introduces them.
var AllStreamKinds = []StreamKind{
	StreamEEG, StreamMotion, StreamBandPower, StreamMetrics,
	StreamMentalCommand, StreamFacialExpression, StreamDeviceQuality,
	StreamEEGQuality, StreamSystem,
}

// IsKnownStreamKind reports whether kind is one of the nine canonical streams.
func IsKnownStreamKind(kind string) bool {
	for _, k := range AllStreamKinds {
		if string(k) == kind {
			return true
		}
	}
	return false
}
