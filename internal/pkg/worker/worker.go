package worker

import (
	"log"
	"time"

	"online_shop/internal/pkg/push"
)

// PushTask 一条待发送的推送
// AccountID 为空表示全量广播
type PushTask struct {
	AccountID string
	Title     string
	Body      string
	Ext       map[string]string
	Retry     int // 重试次数
}

// PushWorkerPool 推送任务池
// 业务路径（下单、建商品）只入队，发送失败在这里重试，绝不反向影响业务
type PushWorkerPool struct {
	TaskQueue  chan PushTask
	RetryQueue chan PushTask
	Service    push.PushService
	WorkerNum  int
	MaxRetry   int
}

func NewPushWorkerPool(service push.PushService, workerNum int, bufferSize int) *PushWorkerPool {
	return &PushWorkerPool{
		TaskQueue:  make(chan PushTask, bufferSize),
		RetryQueue: make(chan PushTask, bufferSize/2),
		Service:    service,
		WorkerNum:  workerNum,
		MaxRetry:   3, // 最多重试3次
	}
}

func (p *PushWorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		go p.worker(i)
	}
	// 启动重试处理协程
	go p.retryWorker()
	log.Printf("Push worker pool started with %d workers", p.WorkerNum)
}

func (p *PushWorkerPool) worker(id int) {
	for task := range p.TaskQueue {
		if err := p.processTask(task); err != nil {
			log.Printf("[Worker %d] Failed to send push (account: %q, title: %q): %v",
				id, task.AccountID, task.Title, err)

			// 如果未达到最大重试次数，加入重试队列
			if task.Retry < p.MaxRetry {
				task.Retry++
				select {
				case p.RetryQueue <- task:
					log.Printf("[Worker %d] Push added to retry queue (attempt %d/%d)",
						id, task.Retry, p.MaxRetry)
				default:
					log.Printf("[Worker %d] Retry queue full, push dropped: %+v", id, task)
					p.logFailedTask(task, err)
				}
			} else {
				log.Printf("[Worker %d] Push exceeded max retries, dropped: %+v", id, task)
				p.logFailedTask(task, err)
			}
		}
	}
}

func (p *PushWorkerPool) retryWorker() {
	for task := range p.RetryQueue {
		// 延迟重试，避免立即重试
		time.Sleep(time.Duration(task.Retry) * time.Second)

		select {
		case p.TaskQueue <- task:
			log.Printf("[RetryWorker] Push re-queued (attempt %d/%d)", task.Retry, p.MaxRetry)
		default:
			log.Printf("[RetryWorker] Main queue full, push dropped: %+v", task)
			p.logFailedTask(task, nil)
		}
	}
}

func (p *PushWorkerPool) processTask(task PushTask) error {
	if p.Service == nil {
		// 未配置推送服务时静默丢弃
		return nil
	}
	if task.AccountID == "" {
		return p.Service.PushToAll(task.Title, task.Body, task.Ext)
	}
	return p.Service.PushToAccount(task.AccountID, task.Title, task.Body, task.Ext)
}

func (p *PushWorkerPool) logFailedTask(task PushTask, err error) {
	log.Printf("[DeadLetter] Push failed permanently: Account=%q, Title=%q, Error=%v",
		task.AccountID, task.Title, err)
}

// GlobalPushPool 实例，未配置推送时为 nil
var GlobalPushPool *PushWorkerPool

// InitGlobalPool 进程入口调用一次
func InitGlobalPool(service push.PushService) {
	GlobalPushPool = NewPushWorkerPool(service, 5, 1000)
	GlobalPushPool.Start()
}

// AddTask 非阻塞入队，队列满直接丢弃
func (p *PushWorkerPool) AddTask(task PushTask) {
	select {
	case p.TaskQueue <- task:
		// 任务入队成功
	default:
		log.Printf("Push worker pool queue full, dropping task: %+v", task)
		p.logFailedTask(task, nil)
	}
}
