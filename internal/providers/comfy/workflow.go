package comfy

// The synthesis backend executes an opaque node graph. The relay treats the
// graph as a fixed template with a single substitutable field: the positive
// prompt text. Extraction keys off the terminal SaveImage node, so its id
// must stay stable.
const (
	positivePromptNodeID = "6"

	// OutputNodeID is the terminal image-output node the result ledger is
	// read from.
	OutputNodeID = "9"
)

type workflowNode struct {
	Inputs    map[string]any `json:"inputs"`
	ClassType string         `json:"class_type"`
}

type workflow map[string]workflowNode

// nodeRef references another node's output slot by node id and slot index.
func nodeRef(id string, slot int) []any {
	return []any{id, slot}
}

// buildWorkflow returns the fixed text-to-image graph with the positive
// prompt substituted in.
func buildWorkflow(prompt string) workflow {
	return workflow{
		"3": {
			ClassType: "KSampler",
			Inputs: map[string]any{
				"seed":         359819880975166,
				"steps":        15,
				"cfg":          1,
				"sampler_name": "euler",
				"scheduler":    "normal",
				"denoise":      1,
				"model":        nodeRef("4", 0),
				"positive":     nodeRef(positivePromptNodeID, 0),
				"negative":     nodeRef("7", 0),
				"latent_image": nodeRef("5", 0),
			},
		},
		"4": {
			ClassType: "CheckpointLoaderSimple",
			Inputs: map[string]any{
				"ckpt_name": "flux1-dev-fp8.safetensors",
			},
		},
		"5": {
			ClassType: "EmptyLatentImage",
			Inputs: map[string]any{
				"width":      512,
				"height":     512,
				"batch_size": 1,
			},
		},
		positivePromptNodeID: {
			ClassType: "CLIPTextEncode",
			Inputs: map[string]any{
				"text": prompt,
				"clip": nodeRef("4", 1),
			},
		},
		"7": {
			ClassType: "CLIPTextEncode",
			Inputs: map[string]any{
				"text": "text, watermark",
				"clip": nodeRef("4", 1),
			},
		},
		"8": {
			ClassType: "VAEDecode",
			Inputs: map[string]any{
				"samples": nodeRef("3", 0),
				"vae":     nodeRef("4", 2),
			},
		},
		OutputNodeID: {
			ClassType: "SaveImage",
			Inputs: map[string]any{
				"filename_prefix": "ComfyUI",
				"images":          nodeRef("8", 0),
			},
		},
	}
}
