// README: Pure prompt selection — what to say to the guest for a given step.
package dialogue

import "fmt"

// PromptFor maps (step, collected slots, retryCount) to the next utterance
// shown to the guest. First attempts echo what has been collected so far;
// retries re-prompt more explicitly with an example answer.
func PromptFor(step Step, data RideSlots, retryCount int) string {
	switch step {
	case StepIdle:
		return "Nhấn nút micro để bắt đầu đặt xe."

	case StepListeningInitial:
		return "Xin chào quý khách! Quý khách cần đặt xe đi đâu ạ?"

	case StepAskingPickup:
		if retryCount > 0 {
			return "Xin lỗi, tôi chưa nhận ra điểm đón. Quý khách vui lòng nói tên một địa điểm trong khách sạn, ví dụ: \"Đón tôi ở Sảnh chính\"."
		}
		return "Quý khách muốn được đón tại đâu ạ?"

	case StepAskingDest:
		if retryCount > 0 {
			return "Xin lỗi, tôi chưa nhận ra điểm đến. Quý khách vui lòng nói rõ hơn, ví dụ: \"Tôi muốn đến Hồ Bơi\"."
		}
		if data.Pickup != "" {
			return fmt.Sprintf("Đã ghi nhận điểm đón tại %s. Quý khách muốn đi đến đâu ạ?", data.Pickup)
		}
		return "Quý khách muốn đi đến đâu ạ?"

	case StepAskingGuestCount:
		if retryCount > 0 {
			return "Xin lỗi, xe chỉ chở được từ 1 đến 7 khách. Quý khách vui lòng cho biết số người, ví dụ: \"3 người\"."
		}
		if data.Destination != "" {
			return fmt.Sprintf("Đi đến %s. Chuyến đi có bao nhiêu khách ạ?", data.Destination)
		}
		return "Chuyến đi có bao nhiêu khách ạ?"

	case StepAskingNotes:
		if retryCount > 0 {
			return "Quý khách có ghi chú gì thêm cho tài xế không? Nếu không, vui lòng nói \"không có\"."
		}
		return "Quý khách có ghi chú gì cho tài xế không ạ?"

	case StepConfirming:
		return confirmSummary(data)

	case StepCompleted:
		return "Đã đặt xe thành công! Tài xế sẽ đến đón quý khách trong ít phút. Cảm ơn quý khách."
	}
	return ""
}

// confirmSummary interpolates every collected slot into one read-back
// sentence the guest can confirm or reject.
func confirmSummary(data RideSlots) string {
	notes := "không có"
	if data.Notes != nil && *data.Notes != "" {
		notes = *data.Notes
	}
	return fmt.Sprintf(
		"Xin xác nhận: đón %d khách tại %s, đi đến %s, ghi chú: %s. Thông tin đã chính xác chưa ạ?",
		data.GuestCount, data.Pickup, data.Destination, notes,
	)
}
