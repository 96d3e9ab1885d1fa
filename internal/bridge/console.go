package bridge

// console forwards tool output to the orchestrator as PrintMessage. Each
// Write is one message.
type console struct {
	out *outbound
}

func (c console) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := c.out.sendPrintMessage(string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}
