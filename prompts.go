package imagestudio

import "fmt"

const (
	enhancePromptTemplate = "Improve this prompt for high-quality image generation. Keep it concise but vivid. Prompt: %s"
	enhanceEditTemplate   = "Improve this instruction for image editing. Keep it actionable, concise, and visual. Instruction: %s"

	// PoseDescribeInstruction is sent with the reference image to obtain a
	// textual pose description.
	PoseDescribeInstruction = "Describe the pose in this image for use as an editing instruction."
	poseApplyTemplate       = "Change the pose of this person as described: %s"
)

// EnhancePromptRequest wraps a Text→Image prompt in the enhancement
// instruction.
func EnhancePromptRequest(prompt string) string {
	return fmt.Sprintf(enhancePromptTemplate, prompt)
}

// EnhanceEditRequest wraps an edit instruction in the enhancement
// instruction.
func EnhanceEditRequest(instruction string) string {
	return fmt.Sprintf(enhanceEditTemplate, instruction)
}

// PoseApplyInstruction embeds an extracted pose description in the edit
// instruction sent with the base image.
func PoseApplyInstruction(description string) string {
	return fmt.Sprintf(poseApplyTemplate, description)
}
