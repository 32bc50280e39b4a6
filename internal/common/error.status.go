package common

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// HTTP Status Code Constants
const (
	// Success Codes (2xx)
	StatusOK        = 200 // Thành công
	StatusAccepted  = 202 // Yêu cầu được chấp nhận
	StatusNoContent = 204 // Thành công nhưng không có nội dung trả về

	// Client Error Codes (4xx)
	StatusBadRequest = 400 // Yêu cầu không hợp lệ
	StatusNotFound   = 404 // Không tìm thấy tài nguyên
	StatusConflict   = 409 // Xung đột dữ liệu

	// Server Error Codes (5xx)
	StatusInternalServerError = 500 // Lỗi server
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: AGG_001)
	Category    string // Phân loại lỗi (ví dụ: Aggregation)
	SubCategory string // Phân loại con (ví dụ: Index)
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "Lỗi hệ thống nội bộ",
	}

	// Validation Errors (VAL_xxx)
	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "Lỗi dữ liệu đầu vào",
	}

	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "Lỗi định dạng dữ liệu",
	}

	// Database Errors (DB_xxx)
	ErrCodeDatabase = ErrorCode{
		Code:        "DB",
		Category:    "Database",
		SubCategory: "General",
		Description: "Lỗi cơ sở dữ liệu chung",
	}

	ErrCodeDatabaseConnection = ErrorCode{
		Code:        "DB_001",
		Category:    "Database",
		SubCategory: "Connection",
		Description: "Lỗi kết nối cơ sở dữ liệu",
	}

	ErrCodeDatabaseQuery = ErrorCode{
		Code:        "DB_002",
		Category:    "Database",
		SubCategory: "Query",
		Description: "Lỗi truy vấn dữ liệu",
	}

	ErrCodeDatabaseIndex = ErrorCode{
		Code:        "DB_003",
		Category:    "Database",
		SubCategory: "Index",
		Description: "Lỗi chỉ mục cơ sở dữ liệu",
	}

	// Aggregation Errors (AGG_xxx)
	ErrCodeAggregation = ErrorCode{
		Code:        "AGG",
		Category:    "Aggregation",
		SubCategory: "General",
		Description: "Lỗi xử lý aggregation chung",
	}

	ErrCodeAggregationEvent = ErrorCode{
		Code:        "AGG_001",
		Category:    "Aggregation",
		SubCategory: "Event",
		Description: "Lỗi dữ liệu event đầu vào của aggregation",
	}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	return e.Message
}

// Is kiểm tra xem error có phải là target error không (hỗ trợ errors.Is)
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if targetErr, ok := target.(*Error); ok {
		return e.Code.Code == targetErr.Code.Code && e.Message == targetErr.Message
	}
	return false
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, details any) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Custom errors
var (
	// Validation Errors
	ErrInvalidInput  = NewError(ErrCodeValidationInput, "Dữ liệu đầu vào không hợp lệ", StatusBadRequest, nil)
	ErrInvalidFormat = NewError(ErrCodeValidationFormat, "Định dạng dữ liệu không hợp lệ", StatusBadRequest, nil)
	ErrRequiredField = NewError(ErrCodeValidationInput, "Thiếu thông tin bắt buộc", StatusBadRequest, nil)

	// Database Errors
	ErrNotFound   = NewError(ErrCodeDatabaseQuery, "Không tìm thấy dữ liệu", StatusNotFound, nil)
	ErrDuplicate  = NewError(ErrCodeDatabaseQuery, "Dữ liệu đã tồn tại", StatusConflict, nil)
	ErrConnection = NewError(ErrCodeDatabaseConnection, "Lỗi kết nối cơ sở dữ liệu", StatusServiceUnavailable, nil)

	// Aggregation Errors
	ErrEventSessionMissing = NewError(ErrCodeAggregationEvent, "Event không có session id hợp lệ", StatusBadRequest, nil)
)

// General Messages
const (
	MsgSuccess         = "Thành công"
	MsgValidationError = "Dữ liệu không hợp lệ"
)

// MongoDB Error Messages
const (
	MsgMongoConnection    = "Lỗi kết nối MongoDB"
	MsgMongoNetwork       = "Lỗi mạng khi kết nối MongoDB"
	MsgMongoTimeout       = "Kết nối MongoDB bị timeout"
	MsgMongoQuery         = "Lỗi truy vấn MongoDB"
	MsgMongoWrite         = "Lỗi ghi dữ liệu MongoDB"
	MsgMongoDuplicate     = "Dữ liệu trùng lặp trong MongoDB"
	MsgMongoIndexConflict = "Index đã tồn tại với cấu hình khác trong MongoDB"
)

// MongoDB Specific Errors
var (
	ErrMongoConnection = NewError(ErrCodeDatabaseConnection, MsgMongoConnection, StatusServiceUnavailable, nil)
	ErrMongoNetwork    = NewError(ErrCodeDatabaseConnection, MsgMongoNetwork, StatusServiceUnavailable, nil)
	ErrMongoTimeout    = NewError(ErrCodeDatabaseConnection, MsgMongoTimeout, StatusServiceUnavailable, nil)
	ErrMongoQuery      = NewError(ErrCodeDatabaseQuery, MsgMongoQuery, StatusInternalServerError, nil)
	ErrMongoWrite      = NewError(ErrCodeDatabaseQuery, MsgMongoWrite, StatusInternalServerError, nil)
	ErrMongoDuplicate  = NewError(ErrCodeDatabaseQuery, MsgMongoDuplicate, StatusConflict, nil)

	// ErrMongoIndexConflict là lỗi cấu hình fatal: index đã tồn tại với options khác
	// (unique/TTL không khớp). Không được retry tự động, phải surface cho người vận hành.
	ErrMongoIndexConflict = NewError(ErrCodeDatabaseIndex, MsgMongoIndexConflict, StatusInternalServerError, nil)
)

// Mã lỗi server của MongoDB cho trường hợp index xung đột cấu hình.
// Tham khảo: IndexOptionsConflict = 85, IndexKeySpecsConflict = 86.
const (
	mongoCodeIndexOptionsConflict  = 85
	mongoCodeIndexKeySpecsConflict = 86
)

// IsIndexConflictError kiểm tra lỗi trả về từ CreateOne có phải là xung đột
// cấu hình index không (cùng tên/cùng key nhưng options khác).
func IsIndexConflictError(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == mongoCodeIndexOptionsConflict || cmdErr.Code == mongoCodeIndexKeySpecsConflict
	}
	return false
}

// ConvertMongoError chuyển đổi lỗi MongoDB sang lỗi hệ thống
func ConvertMongoError(err error) error {
	if err == nil {
		return nil
	}

	// Không convert lỗi đã là lỗi hệ thống
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}

	// Xung đột cấu hình index là lỗi fatal, giữ riêng để caller nhận diện được
	if IsIndexConflictError(err) {
		return ErrMongoIndexConflict
	}

	// Kiểm tra các lỗi MongoDB khác
	if mongo.IsDuplicateKeyError(err) {
		return ErrMongoDuplicate
	}
	if mongo.IsTimeout(err) {
		return ErrMongoTimeout
	}
	if mongo.IsNetworkError(err) {
		return ErrMongoNetwork
	}

	var mongoErr mongo.CommandError
	if errors.As(err, &mongoErr) {
		switch {
		case mongoErr.Code >= 100 && mongoErr.Code < 200:
			return ErrMongoConnection
		default:
			return ErrMongoQuery
		}
	}

	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		return ErrMongoWrite
	}

	// Nếu không tìm thấy lỗi cụ thể, trả về lỗi hệ thống chung
	return NewError(ErrCodeDatabase, "Lỗi cơ sở dữ liệu không xác định", StatusInternalServerError, err)
}
